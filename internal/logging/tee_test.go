package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tonehub/internal/logging"
)

func TestTeeLoggerRespectsEachLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := logging.TeeLogger(base, nil, debug).With(logging.String(logging.FieldComponent, "server"))
	logger.Debug("fine detail")
	logger.Info("listening")

	if strings.Contains(infoBuf.String(), "fine detail") {
		t.Fatalf("info handler received debug record: %q", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "listening") || !strings.Contains(infoBuf.String(), "component=server") {
		t.Fatalf("info handler missing record: %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "fine detail") || !strings.Contains(debugBuf.String(), "listening") {
		t.Fatalf("debug handler missing records: %q", debugBuf.String())
	}
}

func TestTeeLoggerWithoutHandlersDiscards(t *testing.T) {
	logger := logging.TeeLogger(nil)
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("expected discarding logger")
	}
}

func TestPruneRunLogsKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	var paths []string
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "tonehub-"+string(rune('a'+i))+".log")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		stamp := now.Add(time.Duration(i-5) * time.Hour)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	live := paths[4]

	removed := logging.PruneRunLogs(nil, logging.RetentionTarget{Dir: dir, Pattern: "tonehub-*.log", Keep: 3, Exclude: []string{live}})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	for i, path := range paths {
		_, err := os.Stat(path)
		exists := err == nil
		if want := i >= 2; exists != want {
			t.Fatalf("%s exists=%v want %v", filepath.Base(path), exists, want)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
}

func TestPruneRunLogsZeroKeepsAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tonehub-a.log")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if removed := logging.PruneRunLogs(nil, logging.RetentionTarget{Dir: dir, Pattern: "tonehub-*.log"}); removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
}
