// Package testsupport provides fixtures shared by package tests: temp-rooted
// configurations, WAV impulse builders and a static asset server.
package testsupport
