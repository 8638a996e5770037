package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"tonehub/internal/logging"
	"tonehub/internal/services"
)

// maxCatalogBytes caps how much of a catalog response is read.
const maxCatalogBytes = 256 << 20

// LoadError is fatal for the whole view: no partial catalog is ever returned
// alongside it.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrMissingItems reports a catalog file without an items array.
var ErrMissingItems = errors.New("catalog has no items array")

// LoadOptions tunes how a catalog source is read.
type LoadOptions struct {
	Client    *http.Client
	UserAgent string
	Logger    *slog.Logger
}

type fileItem struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"n"`
	Brand    string          `json:"b"`
	Type     string          `json:"t"`
	Location string          `json:"p"`
	Tags     []string        `json:"tag"`
}

type fileStats struct {
	Types  map[string]int `json:"types"`
	Brands map[string]int `json:"brands"`
}

type fileCatalog struct {
	Items *[]fileItem `json:"items"`
	Stats *fileStats  `json:"stats"`
}

// Load reads the catalog from source, an http(s) URL or a local path.
func Load(ctx context.Context, source string, opts LoadOptions) (*Inventory, error) {
	logger := logging.NewComponentLogger(opts.Logger, "catalog")
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, &LoadError{Source: "<empty>", Err: services.Wrap(services.ErrConfiguration, "catalog", "load", "no source configured", nil)}
	}

	var (
		data []byte
		err  error
	)
	if ParseLocation(source).IsHTTP() {
		data, err = fetch(ctx, source, opts)
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			err = services.Wrap(services.ErrNotFound, "catalog", "read", "", err)
		}
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	inv, dropped, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if dropped > 0 {
		logging.WarnWithContext(logger, "duplicate catalog ids ignored", "catalog_duplicate_ids",
			logging.Int("dropped", dropped),
			logging.String(logging.FieldErrorHint, "regenerate the catalog file"),
			logging.String(logging.FieldImpact, "later duplicates are not browsable"))
	}
	logger.Info("catalog loaded",
		logging.String("source", source),
		logging.Int("items", inv.Len()),
		logging.Int("brands", len(inv.Brands())))
	return inv, nil
}

// Decode parses catalog JSON into a new Inventory.
func Decode(data []byte) (*Inventory, int, error) {
	var doc fileCatalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "catalog", "decode", "invalid JSON", err)
	}
	if doc.Items == nil {
		return nil, 0, services.Wrap(services.ErrValidation, "catalog", "decode", "", ErrMissingItems)
	}

	items := make([]Item, 0, len(*doc.Items))
	for i, raw := range *doc.Items {
		id, err := decodeID(raw.ID)
		if err != nil {
			return nil, 0, services.Wrap(services.ErrValidation, "catalog", "decode", fmt.Sprintf("items[%d]", i), err)
		}
		items = append(items, Item{
			ID:       id,
			Name:     strings.TrimSpace(raw.Name),
			Brand:    strings.TrimSpace(raw.Brand),
			Type:     Type(strings.TrimSpace(raw.Type)),
			Location: ParseLocation(raw.Location),
			Tags:     raw.Tags,
		})
	}

	var stats *Stats
	if doc.Stats != nil {
		stats = &Stats{Types: doc.Stats.Types, Brands: doc.Stats.Brands}
	}
	inv, dropped := NewInventory(items, stats)
	return inv, dropped, nil
}

// Reload loads a fresh Inventory; the previous one is left untouched.
func Reload(ctx context.Context, source string, opts LoadOptions) (*Inventory, error) {
	return Load(ctx, source, opts)
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if s = strings.TrimSpace(s); s == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number: %w", err)
	}
	return n.String(), nil
}

func fetch(ctx context.Context, url string, opts LoadOptions) ([]byte, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "fetch", "build request", err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "catalog", "fetch", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "catalog", "fetch", fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "catalog", "fetch", "read body", err)
	}
	return data, nil
}
