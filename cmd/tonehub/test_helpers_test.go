package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tonehub/internal/app"
	"tonehub/internal/download"
	"tonehub/internal/preview"
	"tonehub/internal/testsupport"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	downloadDir string
	assets      *httptest.Server
	clipboard   *clipboardLog
}

type clipboardLog struct {
	mu    sync.Mutex
	lines []string
}

func (c *clipboardLog) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, s)
	return nil
}

func (c *clipboardLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TONEHUB_UNLOCK_KEY", "")
	t.Setenv("TONEHUB_CATALOG_URL", "")

	assets := testsupport.NewAssetServer(t, map[string][]byte{
		"/a.wav":      testsupport.TinyWAV(),
		"/deluxe.wav": testsupport.TinyWAV(),
		"/broken.wav": []byte("<html>not audio</html>"),
	})

	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(base, "config.toml"),
		downloadDir: filepath.Join(base, "downloads"),
		assets:      assets,
		clipboard:   &clipboardLog{},
	}

	catalogPath := filepath.Join(base, "catalog.json")
	catalog := fmt.Sprintf(`{"items": [
  {"id": 1, "n": "JCM800", "b": "Marshall", "t": "IR", "p": %q, "tag": ["clean"]},
  {"id": 2, "n": "5150 Lead", "b": "EVH", "t": "NAM", "p": "rclone:/amps/5150.nam", "tag": ["high-gain"]},
  {"id": 3, "n": "Deluxe Reverb", "b": "Fender", "t": "IR", "p": %q, "tag": ["clean", "combo"]},
  {"id": 4, "n": "Broken Cab", "b": "Mesa", "t": "IR", "p": %q},
  {"id": 5, "n": "Plexi Crunch", "b": "Marshall", "t": "capture", "p": "amps/plexi.nam"}
]}`, assets.URL+"/a.wav", assets.URL+"/deluxe.wav", assets.URL+"/broken.wav")
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	content := fmt.Sprintf(`[paths]
state_dir = %q
download_dir = %q
log_dir = %q

[catalog]
source = %q

[entitlement]
unlock_key = "tone-pro-2026"

[preview]
sample_rate = 8000
burst_hz = 110
burst_ms = 50
attack_ms = 2
max_tail_ms = 10
lowpass_hz = 2000

[download]
remote_strategy = "clipboard"
rclone_remote = "gdrive2:IR_DEF_REPOSITORY"
min_free_mib = 0

[server]
bind = "127.0.0.1:0"
`, filepath.Join(base, "state"), env.downloadDir, filepath.Join(base, "logs"), catalogPath)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (env *cliTestEnv) options() app.Options {
	return app.Options{
		AudioFactory: preview.NullFactory(8000),
		Download: download.Options{
			Remote: download.ClipboardStrategy{Remote: "gdrive2:IR_DEF_REPOSITORY", Write: env.clipboard.write},
		},
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithOptions(env.options())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func requireNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("did not expect %q in output:\n%s", needle, haystack)
	}
}
