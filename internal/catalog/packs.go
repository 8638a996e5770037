package catalog

import (
	"strings"

	"tonehub/internal/textutil"
)

// DefaultPackLimit mirrors the per-pack cap of the curated pack generator.
const DefaultPackLimit = 120

// Pack is a named keyword collection.
type Pack struct {
	Name        string
	Description string
	Keywords    []string
}

// PackItems returns items whose name, brand, location, or tags contain any of
// the pack keywords under Unicode case folding, in Inventory order, capped at limit.
// A non-positive limit uses DefaultPackLimit.
func PackItems(inv *Inventory, pack Pack, limit int) []Item {
	if limit <= 0 {
		limit = DefaultPackLimit
	}
	keywords := make([]string, 0, len(pack.Keywords))
	for _, kw := range pack.Keywords {
		if kw = textutil.Fold(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 || inv == nil {
		return nil
	}

	var out []Item
	inv.Each(func(_ int, item Item) bool {
		if matchesAnyKeyword(item, keywords) {
			out = append(out, item.clone())
		}
		return len(out) < limit
	})
	return out
}

func matchesAnyKeyword(item Item, keywords []string) bool {
	fields := make([]string, 0, 3+len(item.Tags))
	fields = append(fields, textutil.Fold(item.Name), textutil.Fold(item.Brand), textutil.Fold(item.Location.Raw))
	for _, tag := range item.Tags {
		fields = append(fields, textutil.Fold(tag))
	}
	for _, kw := range keywords {
		for _, field := range fields {
			if strings.Contains(field, kw) {
				return true
			}
		}
	}
	return false
}
