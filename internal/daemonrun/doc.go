// Package daemonrun hosts the long-running API server process: it takes the
// single-instance lock, opens a per-run log with retention, assembles the
// runtime and serves until signalled.
package daemonrun
