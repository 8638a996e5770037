// Package filter computes the visible subset of a catalog Inventory.
//
// Filtering is a pure, synchronous function of (inventory, params, rules):
// type, brand, and free-text query are combined conjunctively and the result
// preserves Inventory order. It never fails; the worst case is an empty
// result. The result is capped at Rules.MaxResults, which is a rendering
// bound only and does not change which items match. Engine memoizes the last
// computation keyed by inventory generation and parameter values.
package filter
