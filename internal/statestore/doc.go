// Package statestore persists small string values (such as the entitlement
// flag) across restarts.
//
// Store is backed by SQLite in WAL mode with a versioned schema. Writers on
// the same database take an advisory file lock so two tonehub processes
// sharing a state directory never interleave updates. Memory is an in-process
// implementation for tests and ephemeral runs.
package statestore
