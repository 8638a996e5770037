// Package textutil provides text helpers shared by the filter engine and the
// download strategies.
//
// The primary use cases are:
//   - Unicode case folding for case-insensitive substring matching
//   - Sanitizing catalog names into safe download filenames
package textutil
