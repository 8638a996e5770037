package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"tonehub/internal/api"
)

// health is how a component looks from the user's side.
type health int

const (
	healthNote     health = iota // a setting, not a check
	healthReady                  // working
	healthDegraded               // usable with reduced capability
	healthDown                   // not usable
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
)

func (h health) mark() string {
	switch h {
	case healthReady:
		return "✓"
	case healthDegraded:
		return "!"
	case healthDown:
		return "✗"
	default:
		return "·"
	}
}

func (h health) color() string {
	switch h {
	case healthReady:
		return ansiGreen
	case healthDegraded:
		return ansiYellow
	case healthDown:
		return ansiRed
	default:
		return ansiDim
	}
}

// statusRow is one line of `tonehub status`.
type statusRow struct {
	component string
	health    health
	detail    string
}

func catalogRow(r statusReport) statusRow {
	if r.CatalogError != "" {
		return statusRow{"Catalog", healthDown, r.CatalogError}
	}
	return statusRow{"Catalog", healthReady, fmt.Sprintf("%d items from %s", r.CatalogItems, r.CatalogSource)}
}

func entitlementRow(e api.EntitlementStatus) statusRow {
	if !e.Authorized {
		return statusRow{"Downloads", healthDegraded, "Locked; run `tonehub unlock <key>`"}
	}
	detail := "Unlocked"
	if e.UnlockedAt != "" {
		detail += " at " + e.UnlockedAt
	}
	return statusRow{"Downloads", healthReady, detail}
}

func previewRow(p api.PreviewStatus) statusRow {
	switch {
	case !p.Supported:
		return statusRow{"Audio preview", healthDegraded, "Unavailable; downloads still work"}
	case p.Error != "":
		return statusRow{"Audio preview", healthDegraded, "Last preview failed: " + p.Error}
	case p.Active:
		verb := "Playing"
		if p.Phase == "loading" {
			verb = "Loading"
		}
		return statusRow{"Audio preview", healthReady, verb + " " + p.Name}
	default:
		return statusRow{"Audio preview", healthReady, "Available"}
	}
}

// renderStatusRows aligns details on the longest component name.
func renderStatusRows(rows []statusRow, colorize bool) []string {
	width := 0
	for _, row := range rows {
		width = max(width, utf8.RuneCountInString(row.component))
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(row.component))
		mark := row.health.mark()
		if colorize {
			mark = row.health.color() + mark + ansiReset
		}
		lines = append(lines, fmt.Sprintf("  %s%s  %s %s", row.component, pad, mark, row.detail))
	}
	return lines
}

// heading renders a bold title with an optional dimmed note.
func heading(title, note string, colorize bool) string {
	title = strings.TrimSpace(title)
	if colorize {
		title = ansiBold + title + ansiReset
		if note != "" {
			note = ansiDim + note + ansiReset
		}
	}
	if note == "" {
		return title
	}
	return title + "  " + note
}

// shouldColorize honours NO_COLOR and only colours terminals.
func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
