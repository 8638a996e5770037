package filter

import (
	"slices"
	"strings"
	"sync"

	"tonehub/internal/catalog"
	"tonehub/internal/textutil"
)

// Result is the visible, possibly truncated, item list.
type Result struct {
	// Items holds at most Limit matches in Inventory order. Treat as read-only.
	Items []catalog.Item
	// Total counts every match before truncation.
	Total     int
	Limit     int
	Truncated bool
}

// Visible returns the items of inv that satisfy p under r.
func Visible(inv *catalog.Inventory, p Params, r Rules) Result {
	return visible(inv, p, r, nil)
}

func visible(inv *catalog.Inventory, p Params, r Rules, idx *textIndex) Result {
	limit := r.MaxResults
	res := Result{Limit: limit}
	if inv == nil {
		return res
	}

	query := textutil.Fold(strings.TrimSpace(p.Query))
	inv.Each(func(i int, item catalog.Item) bool {
		if !matchesType(item, p.Type, r) || !matchesBrand(item, p.Brand) {
			return true
		}
		if query != "" && !matchesQuery(item, i, query, idx) {
			return true
		}
		res.Total++
		if limit <= 0 || len(res.Items) < limit {
			res.Items = append(res.Items, inv.At(i))
		}
		return true
	})
	res.Truncated = len(res.Items) < res.Total
	return res
}

func matchesType(item catalog.Item, m Match, r Rules) bool {
	if m.IsAll() {
		return true
	}
	if string(item.Type) == m.Value() {
		return true
	}
	// Some captures are tagged inconsistently; the file extension decides.
	if r.FallbackType == "" || m.Value() != r.FallbackType {
		return false
	}
	for _, ext := range r.FallbackExtensions {
		if item.Location.HasSuffixFold(ext) {
			return true
		}
	}
	return false
}

func matchesBrand(item catalog.Item, m Match) bool {
	return m.IsAll() || item.Brand == m.Value()
}

func matchesQuery(item catalog.Item, pos int, foldedQuery string, idx *textIndex) bool {
	var fields []string
	if idx != nil {
		fields = idx.fields[pos]
	} else {
		fields = foldFields(item)
	}
	for _, field := range fields {
		if strings.Contains(field, foldedQuery) {
			return true
		}
	}
	return false
}

func foldFields(item catalog.Item) []string {
	fields := make([]string, 0, 2+len(item.Tags))
	fields = append(fields, textutil.Fold(item.Name), textutil.Fold(item.Location.Raw))
	for _, tag := range item.Tags {
		fields = append(fields, textutil.Fold(tag))
	}
	return fields
}

// textIndex caches folded search fields for one inventory generation.
type textIndex struct {
	generation uint64
	fields     [][]string
}

func buildIndex(inv *catalog.Inventory) *textIndex {
	idx := &textIndex{generation: inv.Generation(), fields: make([][]string, inv.Len())}
	inv.Each(func(i int, item catalog.Item) bool {
		idx.fields[i] = foldFields(item)
		return true
	})
	return idx
}

type memoKey struct {
	generation uint64
	params     Params
}

// Engine memoizes Visible on (inventory generation, params).
type Engine struct {
	rules Rules

	mu     sync.Mutex
	index  *textIndex
	last   memoKey
	result Result
	valid  bool
}

// NewEngine creates an Engine with fixed rules.
func NewEngine(rules Rules) *Engine {
	rules.FallbackExtensions = slices.Clone(rules.FallbackExtensions)
	return &Engine{rules: rules}
}

// Rules returns the engine's rules.
func (e *Engine) Rules() Rules { return e.rules }

// Visible returns the memoized result for (inv, p), recomputing when either
// the inventory generation or any parameter changed.
func (e *Engine) Visible(inv *catalog.Inventory, p Params) Result {
	if inv == nil {
		return Result{Limit: e.rules.MaxResults}
	}
	key := memoKey{generation: inv.Generation(), params: p}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid && e.last == key {
		return cloneResult(e.result)
	}
	if e.index == nil || e.index.generation != key.generation {
		e.index = buildIndex(inv)
	}
	e.result = visible(inv, p, e.rules, e.index)
	e.last = key
	e.valid = true
	return cloneResult(e.result)
}

func cloneResult(r Result) Result {
	r.Items = slices.Clone(r.Items)
	return r
}
