package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tonehub/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The catalog source points at an empty catalog file under the temp tree
// unless WithCatalog replaces it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.Source = filepath.Join(base, "catalog.json")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	writeCatalog(t, cfgVal.Catalog.Source, `{"items": []}`)

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCatalog writes body as the catalog file.
func WithCatalog(body string) ConfigOption {
	return func(b *configBuilder) {
		writeCatalog(b.t, b.cfg.Catalog.Source, body)
	}
}

// WithPreviewRate shortens the preview burst and sets the sample rate so
// tests play quickly against a silent context.
func WithPreviewRate(rate int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preview.SampleRate = rate
		b.cfg.Preview.BurstMillis = 50
		b.cfg.Preview.AttackMillis = 2
		b.cfg.Preview.MaxTailMillis = 10
		b.cfg.Preview.LowpassHz = float64(rate) / 4
	}
}

// BaseDir returns the temp root for a config produced by NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Catalog.Source)
}

func writeCatalog(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog %s: %v", path, err)
	}
}
