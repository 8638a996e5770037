// Package services defines shared plumbing consumed by the catalog, preview,
// entitlement, and download components.
//
// Key responsibilities:
//   - Context helpers that stamp catalog item IDs, preview session IDs, and
//     request correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so every component reports
//     failures with the same shape, and HTTP/CLI surfaces can classify them.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform.
package services
