package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	DownloadDir string `toml:"download_dir"`
	LogDir      string `toml:"log_dir"`
}

// Catalog describes where the inventory file is fetched from.
type Catalog struct {
	// Source is an http(s) URL or a local file path.
	Source         string `toml:"source"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // 0 keeps the transport default
	UserAgent      string `toml:"user_agent"`
}

// Filter controls the filter engine.
type Filter struct {
	// MaxResults bounds how many items are rendered; it never changes which
	// items match.
	MaxResults int `toml:"max_results"`
	// FallbackType is the type tag whose membership is also granted by file
	// extension, for inconsistently tagged model captures.
	FallbackType       string   `toml:"fallback_type"`
	FallbackExtensions []string `toml:"fallback_extensions"`
}

// Entitlement configures the download gate.
type Entitlement struct {
	UnlockKey  string `toml:"unlock_key"`
	StorageKey string `toml:"storage_key"`
}

// Preview configures the audio preview engine.
type Preview struct {
	Enabled             bool     `toml:"enabled"`
	SampleRate          int      `toml:"sample_rate"`
	BurstHz             float64  `toml:"burst_hz"`
	BurstMillis         int      `toml:"burst_ms"`
	AttackMillis        int      `toml:"attack_ms"`
	MaxTailMillis       int      `toml:"max_tail_ms"`
	LowpassHz           float64  `toml:"lowpass_hz"`
	OutputPeak          float64  `toml:"output_peak"`
	PreviewableTypes    []string `toml:"previewable_types"`
	FetchTimeoutSeconds int      `toml:"fetch_timeout_seconds"`
	MaxFetchBytes       int64    `toml:"max_fetch_bytes"`
}

// Download configures transfer strategies.
type Download struct {
	// RemoteStrategy is "clipboard" or "search"; one per deployment.
	RemoteStrategy string `toml:"remote_strategy"`
	RcloneRemote   string `toml:"rclone_remote"`
	SearchURL      string `toml:"search_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MinFreeMiB     int64  `toml:"min_free_mib"`
}

// Server configures the local HTTP API.
type Server struct {
	Bind     string `toml:"bind"`
	APIToken string `toml:"api_token"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// RetainRuns is how many per-run server logs are kept; 0 keeps all.
	RetainRuns int `toml:"retain_runs"`
}

// Pack is a curated keyword collection over the catalog.
type Pack struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Keywords    []string `toml:"keywords"`
}

// Config encapsulates all configuration values for tonehub.
//
// Configuration sections by subsystem:
//   - Paths: state, download, and log directories
//   - Catalog: inventory source and fetch settings
//   - Filter: render bound and type fallback rule
//   - Entitlement: unlock key and persisted flag key
//   - Preview: burst synthesis and fetch limits
//   - Download: remote-storage strategy and transfer limits
//   - Server: local API bind address and token
//   - Logging: log format and level
//   - Packs: curated keyword collections
type Config struct {
	Paths       Paths       `toml:"paths"`
	Catalog     Catalog     `toml:"catalog"`
	Filter      Filter      `toml:"filter"`
	Entitlement Entitlement `toml:"entitlement"`
	Preview     Preview     `toml:"preview"`
	Download    Download    `toml:"download"`
	Server      Server      `toml:"server"`
	Logging     Logging     `toml:"logging"`
	Packs       []Pack      `toml:"packs"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tonehub/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// List values in the file replace the defaults rather than extend them.
		cfg.Packs = nil
		cfg.Filter.FallbackExtensions = nil
		cfg.Preview.PreviewableTypes = nil
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		cfg.applyListDefaults()
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("tonehub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) applyListDefaults() {
	defaults := Default()
	if len(c.Packs) == 0 {
		c.Packs = defaults.Packs
	}
	if len(c.Filter.FallbackExtensions) == 0 {
		c.Filter.FallbackExtensions = defaults.Filter.FallbackExtensions
	}
	if len(c.Preview.PreviewableTypes) == 0 {
		c.Preview.PreviewableTypes = defaults.Preview.PreviewableTypes
	}
}

// EnsureDirectories creates the state and log directories. The download
// directory is created lazily by the transfer strategy.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the location of the persistent key/value database.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.StateDir, "state.db")
}

// CatalogIsRemote reports whether the catalog source is fetched over HTTP.
func (c *Config) CatalogIsRemote() bool {
	lower := strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
