// Package catalog models the read-only inventory of tone assets.
//
// An Inventory is an ordered, immutable snapshot of catalog items plus
// per-type and per-brand counts. It is built once from the catalog JSON file
// (local path or http(s) URL) and replaced wholesale on reload; nothing in the
// process patches an Inventory in place. Each item's location is classified
// once at ingestion into an HTTP URI or an opaque remote-storage path so the
// preview and download paths never re-parse raw strings.
//
// The package also carries curated packs: keyword collections evaluated
// against an Inventory.
package catalog
