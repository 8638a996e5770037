// Package main hosts the tonehub CLI entrypoint and command graph.
//
// The Cobra command tree browses the tone catalog (search, show, stats,
// packs), auditions impulse responses through the preview engine, drives the
// entitlement gate (unlock, confirm-payment) and dispatches downloads. The
// serve command runs the local HTTP API that a browser front end talks to.
//
// Commands stay thin: configuration, logging and component wiring live in
// commandContext and internal/app so each subcommand only formats results.
package main
