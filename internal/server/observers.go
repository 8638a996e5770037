package server

import (
	"sync"
	"time"

	"tonehub/internal/api"
	"tonehub/internal/entitlement"
	"tonehub/internal/logging"
	"tonehub/internal/preview"
)

// previewFailure is the last asynchronous preview error.
type previewFailure struct {
	itemID string
	err    error
	at     time.Time
}

// observations holds what the server learns from component events rather
// than from direct calls.
type observations struct {
	mu         sync.Mutex
	failure    *previewFailure
	unlockedAt time.Time
}

func (o *observations) setFailure(f previewFailure) {
	o.mu.Lock()
	o.failure = &f
	o.mu.Unlock()
}

// clearFailure reports whether a failure was pending.
func (o *observations) clearFailure() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	had := o.failure != nil
	o.failure = nil
	return had
}

func (o *observations) lastFailure() (previewFailure, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failure == nil {
		return previewFailure{}, false
	}
	return *o.failure, true
}

func (o *observations) markUnlocked(at time.Time) {
	o.mu.Lock()
	if o.unlockedAt.IsZero() {
		o.unlockedAt = at
	}
	o.mu.Unlock()
}

func (o *observations) unlockTime() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unlockedAt
}

// onPreviewEvent keeps the failure slot in step with the engine. A new
// session clears the previous failure; fetch, decode and playback errors
// replace it.
func (s *Server) onPreviewEvent(ev preview.Event) {
	switch {
	case ev.Kind == preview.EventError && ev.Err != nil:
		s.observed.setFailure(previewFailure{itemID: ev.Session.ItemID, err: ev.Err, at: time.Now()})
	case ev.Kind == preview.EventPhase && ev.Phase == preview.PhaseLoading:
		s.observed.clearFailure()
	}
}

func (s *Server) onEntitlementChange(state entitlement.State) {
	if state != entitlement.Unlocked {
		return
	}
	s.observed.markUnlocked(time.Now())
	s.logger.Debug("entitlement observer notified", logging.String("state", state.String()))
}

func (s *Server) withFailure(status api.PreviewStatus) api.PreviewStatus {
	f, ok := s.observed.lastFailure()
	if !ok {
		return status
	}
	return api.WithFailure(status, f.itemID, f.err, f.at)
}

func (s *Server) entitlementStatus() api.EntitlementStatus {
	out := api.FromEntitlement(s.deps.Gate.State())
	if at := s.observed.unlockTime(); !at.IsZero() && out.Authorized {
		out.UnlockedAt = at.UTC().Format(time.RFC3339)
	}
	return out
}
