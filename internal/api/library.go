package api

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"tonehub/internal/catalog"
	"tonehub/internal/config"
	"tonehub/internal/filter"
	"tonehub/internal/logging"
	"tonehub/internal/services"
)

// Library serves read-only catalog views.
type Library struct {
	inventory atomic.Pointer[catalog.Inventory]
	engine    *filter.Engine
	packs     []catalog.Pack
	source    string
	load      catalog.LoadOptions
	logger    *slog.Logger
}

// NewLibrary wraps an already loaded inventory.
func NewLibrary(inv *catalog.Inventory, rules filter.Rules, packs []config.Pack, logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	lib := &Library{
		engine: filter.NewEngine(rules),
		logger: logging.NewComponentLogger(logger, "library"),
	}
	for _, p := range packs {
		lib.packs = append(lib.packs, catalog.Pack{Name: p.Name, Description: p.Description, Keywords: append([]string(nil), p.Keywords...)})
	}
	lib.inventory.Store(inv)
	return lib
}

// OpenLibrary loads source and wraps it. A load failure is returned as is;
// no partial library is ever produced.
func OpenLibrary(ctx context.Context, source string, opts catalog.LoadOptions, rules filter.Rules, packs []config.Pack, logger *slog.Logger) (*Library, error) {
	inv, err := catalog.Load(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	lib := NewLibrary(inv, rules, packs, logger)
	lib.source = source
	lib.load = opts
	return lib, nil
}

// Inventory returns the current snapshot.
func (l *Library) Inventory() *catalog.Inventory { return l.inventory.Load() }

// Reload replaces the snapshot from the original source. On failure the
// previous snapshot stays in place.
func (l *Library) Reload(ctx context.Context) error {
	if l.source == "" {
		return services.Wrap(services.ErrConfiguration, "library", "reload", "library has no source", nil)
	}
	inv, err := catalog.Reload(ctx, l.source, l.load)
	if err != nil {
		logging.WarnWithContext(l.logger, "catalog reload failed; keeping previous snapshot", "catalog_reload_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog.source"),
			logging.String(logging.FieldImpact, "listing shows the previous catalog"))
		return err
	}
	l.inventory.Store(inv)
	return nil
}

// Search returns the filtered view for params.
func (l *Library) Search(params filter.Params) ItemListResponse {
	return FromFilterResult(l.engine.Visible(l.Inventory(), params))
}

// Lookup finds an item by id.
func (l *Library) Lookup(id string) (catalog.Item, error) {
	id = strings.TrimSpace(id)
	inv := l.Inventory()
	if inv != nil {
		if item, ok := inv.Lookup(id); ok {
			return item, nil
		}
	}
	return catalog.Item{}, services.Wrap(services.ErrNotFound, "library", "lookup", "item "+id+" not found", nil)
}

// Stats returns ranked type and brand counts.
func (l *Library) Stats() StatsResponse {
	inv := l.Inventory()
	if inv == nil {
		return StatsResponse{Types: []Count{}, Brands: []Count{}}
	}
	stats := inv.Stats()
	return StatsResponse{
		Total:  inv.Len(),
		Types:  FromCounts(catalog.Ranked(stats.Types)),
		Brands: FromCounts(catalog.Ranked(stats.Brands)),
	}
}

// Packs returns every curated pack with up to limit items each.
func (l *Library) Packs(limit int) PackListResponse {
	inv := l.Inventory()
	out := PackListResponse{Packs: make([]Pack, 0, len(l.packs))}
	for _, p := range l.packs {
		out.Packs = append(out.Packs, Pack{
			Name:        p.Name,
			Description: p.Description,
			Keywords:    append([]string(nil), p.Keywords...),
			Items:       FromItems(catalog.PackItems(inv, p, limit)),
		})
	}
	return out
}
