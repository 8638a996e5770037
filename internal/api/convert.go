package api

import (
	"time"

	"tonehub/internal/catalog"
	"tonehub/internal/download"
	"tonehub/internal/entitlement"
	"tonehub/internal/filter"
	"tonehub/internal/preview"
)

// FromItem converts a catalog item.
func FromItem(item catalog.Item) Item {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return Item{
		ID:           item.ID,
		Name:         item.Name,
		Brand:        item.Brand,
		Type:         string(item.Type),
		Location:     item.Location.Raw,
		LocationKind: item.Location.Kind.String(),
		Tags:         append([]string(nil), tags...),
	}
}

// FromItems converts a slice of catalog items, never returning nil.
func FromItems(items []catalog.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromFilterResult converts a filter result.
func FromFilterResult(res filter.Result) ItemListResponse {
	return ItemListResponse{
		Items:     FromItems(res.Items),
		Total:     res.Total,
		Limit:     res.Limit,
		Truncated: res.Truncated,
	}
}

// FromCounts converts ranked counts.
func FromCounts(counts []catalog.Count) []Count {
	out := make([]Count, 0, len(counts))
	for _, c := range counts {
		out = append(out, Count{Key: c.Key, Count: c.Count})
	}
	return out
}

// FromSession converts the live preview session; ok=false reports Idle.
func FromSession(session preview.Session, ok, supported bool) PreviewStatus {
	if !ok {
		return PreviewStatus{Supported: supported, Phase: preview.PhaseIdle.String()}
	}
	status := PreviewStatus{
		Supported: supported,
		Active:    true,
		SessionID: session.ID,
		ItemID:    session.ItemID,
		Name:      session.Name,
		Phase:     session.Phase.String(),
	}
	if !session.StartedAt.IsZero() {
		status.StartedAt = session.StartedAt.UTC().Format(dateTimeFormat)
	}
	if session.Duration > 0 {
		status.DurationMS = session.Duration.Milliseconds()
	}
	return status
}

// WithFailure attaches an asynchronous preview failure to status.
func WithFailure(status PreviewStatus, itemID string, err error, at time.Time) PreviewStatus {
	if err == nil {
		return status
	}
	status.Error = err.Error()
	status.ErrorKind = preview.KindOf(err).String()
	status.ErrorItemID = itemID
	if !at.IsZero() {
		status.ErrorAt = at.UTC().Format(dateTimeFormat)
	}
	return status
}

// FromEntitlement converts the gate state.
func FromEntitlement(state entitlement.State) EntitlementStatus {
	return EntitlementStatus{State: state.String(), Authorized: state == entitlement.Unlocked}
}

// FromDownload converts a dispatch result.
func FromDownload(res download.Result) DownloadResult {
	return DownloadResult{
		Action:  string(res.Action),
		ItemID:  res.ItemID,
		Path:    res.Path,
		Bytes:   res.Bytes,
		SHA256:  res.SHA256,
		Command: res.Command,
		URL:     res.URL,
		Message: res.Message,
	}
}
