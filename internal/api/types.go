package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Item describes a catalog entry in a transport-friendly format.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Type         string   `json:"type"`
	Location     string   `json:"location"`
	LocationKind string   `json:"locationKind"`
	Tags         []string `json:"tags"`
}

// ItemListResponse wraps a filtered item list.
type ItemListResponse struct {
	Items     []Item `json:"items"`
	Total     int    `json:"total"`
	Limit     int    `json:"limit"`
	Truncated bool   `json:"truncated"`
}

// ItemResponse wraps a single item.
type ItemResponse struct {
	Item Item `json:"item"`
}

// Count is one ranked statistics row.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// StatsResponse summarizes the loaded catalog.
type StatsResponse struct {
	Total  int     `json:"total"`
	Types  []Count `json:"types"`
	Brands []Count `json:"brands"`
}

// Pack is a curated keyword collection with its matching items.
type Pack struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords"`
	Items       []Item   `json:"items"`
}

// PackListResponse wraps curated packs.
type PackListResponse struct {
	Packs []Pack `json:"packs"`
}

// PreviewStatus reports the audio preview engine.
type PreviewStatus struct {
	Supported  bool   `json:"supported"`
	Active     bool   `json:"active"`
	Status     string `json:"status,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	ItemID     string `json:"itemId,omitempty"`
	Name       string `json:"name,omitempty"`
	Phase      string `json:"phase"`
	StartedAt  string `json:"startedAt,omitempty"`
	DurationMS int64  `json:"durationMs,omitempty"`
	// The last asynchronous failure, kept until the next start or a dismiss.
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"errorKind,omitempty"`
	ErrorItemID string `json:"errorItemId,omitempty"`
	ErrorAt     string `json:"errorAt,omitempty"`
}

// EntitlementStatus reports the download gate.
type EntitlementStatus struct {
	State      string `json:"state"`
	Authorized bool   `json:"authorized"`
	Message    string `json:"message,omitempty"`
	// UnlockedAt is set when the unlock happened in this process.
	UnlockedAt string `json:"unlockedAt,omitempty"`
}

// VerifyRequest carries an access key.
type VerifyRequest struct {
	Key string `json:"key"`
}

// PaymentRequest is the checkout success callback payload.
type PaymentRequest struct {
	PayerName string `json:"payerName"`
	OrderID   string `json:"orderId,omitempty"`
}

// DownloadResult reports a dispatched download.
type DownloadResult struct {
	Action  string `json:"action"`
	ItemID  string `json:"itemId"`
	Path    string `json:"path,omitempty"`
	Bytes   int64  `json:"bytes,omitempty"`
	SHA256  string `json:"sha256,omitempty"`
	Command string `json:"command,omitempty"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
