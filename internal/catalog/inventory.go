package catalog

import (
	"cmp"
	"slices"
	"sync/atomic"
)

var generationCounter atomic.Uint64

// Stats holds the aggregate counts shipped with (or derived from) the catalog.
type Stats struct {
	Types  map[string]int
	Brands map[string]int
}

// Count is one row of an ordered Stats view.
type Count struct {
	Key   string
	Count int
}

// Inventory is an immutable, ordered snapshot of catalog items.
type Inventory struct {
	items      []Item
	index      map[string]int
	stats      Stats
	generation uint64
}

// NewInventory builds an Inventory from items in display order. When stats
// is nil the counts are derived from items. Duplicate IDs keep the first
// occurrence; the number of dropped duplicates is returned.
func NewInventory(items []Item, stats *Stats) (*Inventory, int) {
	inv := &Inventory{
		items:      make([]Item, 0, len(items)),
		index:      make(map[string]int, len(items)),
		generation: generationCounter.Add(1),
	}
	dropped := 0
	for _, item := range items {
		if _, dup := inv.index[item.ID]; dup {
			dropped++
			continue
		}
		inv.index[item.ID] = len(inv.items)
		inv.items = append(inv.items, item.clone())
	}

	if stats != nil {
		inv.stats = Stats{Types: cloneCounts(stats.Types), Brands: cloneCounts(stats.Brands)}
	} else {
		inv.stats = deriveStats(inv.items)
	}
	return inv, dropped
}

// Generation identifies this snapshot; a reload always yields a new value.
func (inv *Inventory) Generation() uint64 { return inv.generation }

// Len returns the number of items.
func (inv *Inventory) Len() int { return len(inv.items) }

// At returns the item at position i in display order.
func (inv *Inventory) At(i int) Item { return inv.items[i].clone() }

// Items returns a copy of every item in display order.
func (inv *Inventory) Items() []Item {
	out := make([]Item, len(inv.items))
	for i := range inv.items {
		out[i] = inv.items[i].clone()
	}
	return out
}

// Each calls fn for every item in display order until fn returns false. The
// item passed to fn must not be retained with its Tags slice modified.
func (inv *Inventory) Each(fn func(int, Item) bool) {
	for i := range inv.items {
		if !fn(i, inv.items[i]) {
			return
		}
	}
}

// Lookup returns the item with the given ID.
func (inv *Inventory) Lookup(id string) (Item, bool) {
	pos, ok := inv.index[id]
	if !ok {
		return Item{}, false
	}
	return inv.items[pos].clone(), true
}

// Stats returns a copy of the aggregate counts.
func (inv *Inventory) Stats() Stats {
	return Stats{Types: cloneCounts(inv.stats.Types), Brands: cloneCounts(inv.stats.Brands)}
}

// Brands returns the distinct brand names, sorted, for filter menus.
func (inv *Inventory) Brands() []string { return sortedKeys(inv.stats.Brands) }

// Types returns the distinct type tags, sorted, for filter menus.
func (inv *Inventory) Types() []string { return sortedKeys(inv.stats.Types) }

// Ranked orders counts by count descending, then key ascending.
func Ranked(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func deriveStats(items []Item) Stats {
	stats := Stats{Types: map[string]int{}, Brands: map[string]int{}}
	for _, item := range items {
		stats.Types[string(item.Type)]++
		if item.Brand != "" {
			stats.Brands[item.Brand]++
		}
	}
	return stats
}

func cloneCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
