// Package api defines wire-format types and converters shared by the CLI and
// the HTTP server. It translates catalog, preview, entitlement, and download
// models into transport-friendly DTOs so consumers never couple to internal
// types.
//
// # Key Types
//
// Item: transport representation of a catalog entry.
//
// ItemListResponse: a filtered page with the pre-truncation total.
//
// PreviewStatus, EntitlementStatus, DownloadResult: state snapshots for the
// three user actions.
//
// # Library
//
// Library holds the current Inventory behind an atomic pointer together with
// the memoizing filter engine and the configured curated packs. Reload swaps
// the whole snapshot; readers never observe a partially loaded catalog.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Enums are exposed as
// lowercase strings. Timestamps use RFC3339 with milliseconds.
package api
