// Package server exposes the catalog browser over a local HTTP JSON API.
//
// Read endpoints (items, stats, packs, preview and entitlement state) are
// open. Mutating endpoints (preview start/stop, entitlement events, downloads,
// catalog reload) require "Authorization: Bearer <token>" when an API token
// is configured. Every request carries a correlation id, taken from
// X-Request-ID or generated, which is echoed back and attached to the log
// context of everything the request triggers.
package server
