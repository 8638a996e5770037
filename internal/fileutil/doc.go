// Package fileutil writes downloads atomically and answers filesystem
// capacity questions for transfer preflight.
package fileutil
