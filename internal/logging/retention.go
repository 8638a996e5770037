package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// RetentionTarget selects the run logs subject to pruning.
type RetentionTarget struct {
	Dir     string
	Pattern string
	// Keep is how many of the newest matching files survive. Zero disables
	// pruning for the target.
	Keep int
	// Exclude lists paths that are never removed, typically the live log.
	Exclude []string
}

type runLog struct {
	path    string
	modTime time.Time
}

// PruneRunLogs removes all but the newest Keep files of each target. Failures
// are logged and never abort startup.
func PruneRunLogs(logger *slog.Logger, targets ...RetentionTarget) int {
	removed := 0
	for _, target := range targets {
		if target.Keep <= 0 || target.Dir == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(target.Dir, target.Pattern))
		if err != nil {
			continue
		}
		logs := make([]runLog, 0, len(matches))
		for _, path := range matches {
			if slices.Contains(target.Exclude, path) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			logs = append(logs, runLog{path: path, modTime: info.ModTime()})
		}
		keep := target.Keep - len(target.Exclude)
		if keep < 0 {
			keep = 0
		}
		if len(logs) <= keep {
			continue
		}
		slices.SortFunc(logs, func(a, b runLog) int { return b.modTime.Compare(a.modTime) })
		for _, stale := range logs[keep:] {
			if err := os.Remove(stale.path); err != nil {
				WarnWithContext(logger, "run log prune failed; file remains", "log_retention_failed",
					String("path", stale.path),
					Error(err),
					String(FieldErrorHint, "check log_dir ownership"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Debug("run log pruned", String("path", stale.path), String(FieldEventType, "log_pruned"))
			}
		}
	}
	return removed
}
