package filter

import (
	"strings"

	"tonehub/internal/config"
)

// Match is either the match-all sentinel or one concrete value.
type Match struct {
	value string
	set   bool
}

// All returns the match-all sentinel.
func All() Match { return Match{} }

// Only matches exactly value.
func Only(value string) Match { return Match{value: value, set: true} }

// ParseMatch maps user input to a Match: empty, "*" and "all" (any case)
// mean match-all.
func ParseMatch(input string) Match {
	trimmed := strings.TrimSpace(input)
	switch strings.ToLower(trimmed) {
	case "", "*", "all":
		return All()
	}
	return Only(trimmed)
}

// IsAll reports whether m is the match-all sentinel.
func (m Match) IsAll() bool { return !m.set }

// Value returns the concrete value, or "" for match-all.
func (m Match) Value() string { return m.value }

func (m Match) String() string {
	if !m.set {
		return "all"
	}
	return m.value
}

// Params are the transient filter inputs. Params is a value: changing one
// field never resets the others.
type Params struct {
	Query string
	Type  Match
	Brand Match
}

// Rules are the deployment-level filter settings.
type Rules struct {
	MaxResults         int
	FallbackType       string
	FallbackExtensions []string
}

// DefaultRules mirrors the configuration defaults.
func DefaultRules() Rules {
	return RulesFromConfig(config.Default().Filter)
}

// RulesFromConfig adapts the [filter] configuration section.
func RulesFromConfig(cfg config.Filter) Rules {
	return Rules{
		MaxResults:         cfg.MaxResults,
		FallbackType:       cfg.FallbackType,
		FallbackExtensions: append([]string(nil), cfg.FallbackExtensions...),
	}
}
