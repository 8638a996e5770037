package filter_test

import (
	"fmt"
	"testing"

	"tonehub/internal/catalog"
	"tonehub/internal/filter"
)

const scenario = `{
  "items": [
    {"id": 1, "n": "JCM800", "b": "Marshall", "t": "IR", "p": "https://x/a.wav", "tag": ["clean"]},
    {"id": 2, "n": "5150 Lead", "b": "EVH", "t": "NAM", "p": "rclone:/amps/5150.nam", "tag": ["high-gain"]},
    {"id": 3, "n": "Deluxe Reverb", "b": "Fender", "t": "IR", "p": "https://x/b.wav", "tag": ["clean", "combo"]}
  ]
}`

func mustInventory(t *testing.T, body string) *catalog.Inventory {
	t.Helper()
	inv, dropped, err := catalog.Decode([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dropped != 0 {
		t.Fatalf("unexpected dropped records: %d", dropped)
	}
	return inv
}

func ids(items []catalog.Item) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item.ID
	}
	return out
}

func TestVisibleScenario(t *testing.T) {
	inv := mustInventory(t, scenario)
	rules := filter.DefaultRules()

	tests := []struct {
		name   string
		params filter.Params
		want   string
	}{
		{"everything", filter.Params{}, "1,2,3"},
		{"type IR", filter.Params{Type: filter.Only("IR")}, "1,3"},
		{"query clean", filter.Params{Query: "clean"}, "1,3"},
		{"query upper case", filter.Params{Query: "CLEAN"}, "1,3"},
		{"query matches location", filter.Params{Query: "/AMPS/"}, "2"},
		{"query matches name", filter.Params{Query: "reverb"}, "3"},
		{"query jcm matches by name", filter.Params{Query: "jcm"}, "1"},
		{"brand is not a searched field", filter.Params{Query: "marshall"}, ""},
		{"query rock matches nothing", filter.Params{Query: "rock"}, ""},
		{"brand", filter.Params{Brand: filter.Only("EVH")}, "2"},
		{"brand is case sensitive", filter.Params{Brand: filter.Only("evh")}, ""},
		{"conjunction", filter.Params{Query: "clean", Brand: filter.Only("Fender"), Type: filter.Only("IR")}, "3"},
		{"no match", filter.Params{Query: "zzz"}, ""},
		{"whitespace query ignored", filter.Params{Query: "   "}, "1,2,3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Visible(inv, tt.params, rules)
			if ids(got.Items) != tt.want {
				t.Fatalf("got %q want %q", ids(got.Items), tt.want)
			}
			if got.Truncated {
				t.Fatal("unexpected truncation")
			}
		})
	}
}

func TestConjunctionIsIntersection(t *testing.T) {
	inv := mustInventory(t, `{"items": [
		{"id": 1, "n": "JCM800", "b": "Marshall", "t": "IR", "p": "https://x/a.wav", "tag": ["clean"]},
		{"id": 2, "n": "5150 Lead", "b": "EVH", "t": "NAM", "p": "rclone:/amps/5150.nam", "tag": ["high-gain"]},
		{"id": 3, "n": "Deluxe Reverb", "b": "Fender", "t": "IR", "p": "https://x/b.wav", "tag": ["clean", "combo"]},
		{"id": 4, "n": "JCM900 Lead", "b": "Marshall", "t": "NAM", "p": "rclone:/amps/jcm900.nam", "tag": ["rock"]},
		{"id": 5, "n": "Twin Clean", "b": "Fender", "t": "NAM", "p": "https://x/twin.nam"},
		{"id": 6, "n": "1960 Cab", "b": "Marshall", "t": "IR", "p": "rclone:/cabs/1960.wav", "tag": ["rock", "clean"]},
		{"id": 7, "n": "Mislabeled", "b": "EVH", "t": "IR", "p": "rclone:/amps/evh.NAM", "tag": ["lead"]}
	]}`)
	rules := filter.DefaultRules()

	types := []filter.Match{filter.All(), filter.Only("IR"), filter.Only("NAM")}
	brands := []filter.Match{filter.All(), filter.Only("Marshall"), filter.Only("Fender"), filter.Only("EVH")}
	queries := []string{"", "clean", "lead", "jcm", "rock", "amps"}

	all := filter.Visible(inv, filter.Params{}, rules).Items
	for _, typ := range types {
		for _, brand := range brands {
			for _, q := range queries {
				combined := filter.Visible(inv, filter.Params{Type: typ, Brand: brand, Query: q}, rules)
				byType := idSet(filter.Visible(inv, filter.Params{Type: typ}, rules).Items)
				byBrand := idSet(filter.Visible(inv, filter.Params{Brand: brand}, rules).Items)
				byQuery := idSet(filter.Visible(inv, filter.Params{Query: q}, rules).Items)

				var want []catalog.Item
				for _, item := range all {
					if byType[item.ID] && byBrand[item.ID] && byQuery[item.ID] {
						want = append(want, item)
					}
				}
				if ids(combined.Items) != ids(want) {
					t.Fatalf("type=%v brand=%v q=%q: got %q want intersection %q",
						typ, brand, q, ids(combined.Items), ids(want))
				}
			}
		}
	}
}

func idSet(items []catalog.Item) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item.ID] = true
	}
	return set
}

func TestVisibleIsSubsequence(t *testing.T) {
	inv := mustInventory(t, scenario)
	all := filter.Visible(inv, filter.Params{}, filter.DefaultRules())
	sub := filter.Visible(inv, filter.Params{Query: "e"}, filter.DefaultRules())

	pos := 0
	for _, item := range sub.Items {
		for pos < len(all.Items) && all.Items[pos].ID != item.ID {
			pos++
		}
		if pos == len(all.Items) {
			t.Fatalf("item %s out of inventory order", item.ID)
		}
		pos++
	}
}

func TestVisibleTypeFallbackByExtension(t *testing.T) {
	inv := mustInventory(t, `{"items": [
		{"id": "a", "n": "Mislabeled", "b": "X", "t": "IR", "p": "rclone:/captures/amp.NAM"},
		{"id": "b", "n": "Proper", "b": "X", "t": "NAM", "p": "rclone:/captures/b.nam"},
		{"id": "c", "n": "Cab", "b": "X", "t": "IR", "p": "rclone:/cabs/c.wav"}
	]}`)

	got := filter.Visible(inv, filter.Params{Type: filter.Only("NAM")}, filter.DefaultRules())
	if ids(got.Items) != "a,b" {
		t.Fatalf("expected fallback to include mislabeled capture, got %q", ids(got.Items))
	}

	noFallback := filter.Rules{MaxResults: 300}
	got = filter.Visible(inv, filter.Params{Type: filter.Only("NAM")}, noFallback)
	if ids(got.Items) != "b" {
		t.Fatalf("expected strict type match, got %q", ids(got.Items))
	}
}

func TestVisibleTruncatesWithoutChangingMatches(t *testing.T) {
	body := `{"items": [`
	for i := 0; i < 10; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"id": %d, "n": "Cab %d", "b": "B", "t": "IR", "p": "rclone:/c/%d.wav"}`, i, i, i)
	}
	body += `]}`
	inv := mustInventory(t, body)

	rules := filter.Rules{MaxResults: 4}
	got := filter.Visible(inv, filter.Params{}, rules)
	if len(got.Items) != 4 || got.Total != 10 || !got.Truncated || got.Limit != 4 {
		t.Fatalf("unexpected truncation result: len=%d total=%d truncated=%v", len(got.Items), got.Total, got.Truncated)
	}
	if ids(got.Items) != "0,1,2,3" {
		t.Fatalf("expected leading items, got %q", ids(got.Items))
	}

	narrow := filter.Visible(inv, filter.Params{Query: "cab 7"}, rules)
	if narrow.Total != 1 || narrow.Truncated {
		t.Fatalf("expected single match, got total=%d", narrow.Total)
	}
}

func TestVisibleNilInventory(t *testing.T) {
	got := filter.Visible(nil, filter.Params{Query: "x"}, filter.DefaultRules())
	if len(got.Items) != 0 || got.Total != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestParseMatch(t *testing.T) {
	for _, in := range []string{"", "  ", "all", "ALL", "*"} {
		if !filter.ParseMatch(in).IsAll() {
			t.Fatalf("expected %q to match all", in)
		}
	}
	if m := filter.ParseMatch(" IR "); m.IsAll() || m.Value() != "IR" {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestEngineMemoizesPerGeneration(t *testing.T) {
	inv := mustInventory(t, scenario)
	engine := filter.NewEngine(filter.DefaultRules())

	first := engine.Visible(inv, filter.Params{Query: "clean"})
	first.Items[0].Name = "mutated"
	second := engine.Visible(inv, filter.Params{Query: "clean"})
	if second.Items[0].Name != "JCM800" {
		t.Fatalf("memoized result leaked caller mutation: %q", second.Items[0].Name)
	}

	changed := engine.Visible(inv, filter.Params{Query: "clean", Brand: filter.Only("Fender")})
	if ids(changed.Items) != "3" {
		t.Fatalf("expected recompute on param change, got %q", ids(changed.Items))
	}

	reloaded := mustInventory(t, `{"items": [
		{"id": 9, "n": "Clean Twin", "b": "Fender", "t": "IR", "p": "rclone:/t.wav"}
	]}`)
	if reloaded.Generation() == inv.Generation() {
		t.Fatal("expected distinct generations")
	}
	got := engine.Visible(reloaded, filter.Params{Query: "clean", Brand: filter.Only("Fender")})
	if ids(got.Items) != "9" {
		t.Fatalf("expected recompute on new inventory, got %q", ids(got.Items))
	}
}

func TestEngineMatchesPureFunction(t *testing.T) {
	inv := mustInventory(t, scenario)
	rules := filter.DefaultRules()
	engine := filter.NewEngine(rules)
	params := []filter.Params{
		{},
		{Query: "lead"},
		{Type: filter.Only("NAM")},
		{Query: "x/", Type: filter.Only("IR")},
	}
	for _, p := range params {
		want := filter.Visible(inv, p, rules)
		got := engine.Visible(inv, p)
		if ids(got.Items) != ids(want.Items) || got.Total != want.Total {
			t.Fatalf("engine diverged for %+v: got %q want %q", p, ids(got.Items), ids(want.Items))
		}
	}
}
