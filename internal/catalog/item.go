package catalog

import (
	"slices"
	"strings"
)

// Type is the enumerated asset tag, e.g. IR or NAM. Unknown tags are kept
// verbatim.
type Type string

const (
	TypeIR  Type = "IR"
	TypeNAM Type = "NAM"
)

// LocationKind discriminates the two ways an asset can be reached.
type LocationKind int

const (
	// LocationRemotePath is an opaque path inside remote storage.
	LocationRemotePath LocationKind = iota
	// LocationHTTP is a network-fetchable http(s) URI.
	LocationHTTP
)

func (k LocationKind) String() string {
	if k == LocationHTTP {
		return "http"
	}
	return "remote_path"
}

// Location is the classified form of an item's raw location string.
type Location struct {
	Kind LocationKind
	Raw  string
}

// ParseLocation classifies a raw location string.
func ParseLocation(raw string) Location {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Location{Kind: LocationHTTP, Raw: raw}
	}
	return Location{Kind: LocationRemotePath, Raw: raw}
}

// IsHTTP reports whether the location can be fetched over the network.
func (l Location) IsHTTP() bool { return l.Kind == LocationHTTP }

// HasSuffixFold reports whether the raw location ends with suffix, ignoring
// ASCII case.
func (l Location) HasSuffixFold(suffix string) bool {
	if len(suffix) > len(l.Raw) {
		return false
	}
	return strings.EqualFold(l.Raw[len(l.Raw)-len(suffix):], suffix)
}

func (l Location) String() string { return l.Raw }

// Item is one catalog entry. Items are values; the Tags slice is never
// mutated after load, and accessors hand out copies.
type Item struct {
	ID       string
	Name     string
	Brand    string
	Type     Type
	Location Location
	Tags     []string
}

func (i Item) clone() Item {
	i.Tags = slices.Clone(i.Tags)
	return i
}
