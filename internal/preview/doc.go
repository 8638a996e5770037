// Package preview auditions impulse responses by convolving a short
// synthesized guitar-like burst with the IR and playing the result.
//
// Engine owns the single audio Context and at most one live session. A
// session moves Idle → Loading → Playing → Idle; starting the active item
// again toggles it off, and starting another item supersedes it. Loading and
// playback completion run on goroutines; every completion compares the token
// it captured with the engine's current token and is discarded when stale, so
// a slow fetch can never resurrect a superseded preview.
//
// Failures are reported as *Error values with a Kind and always leave the
// engine Idle. None of them are fatal to the process.
package preview
