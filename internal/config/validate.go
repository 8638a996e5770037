package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateEntitlement(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePacks()
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Source == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tonehub/config.toml"
		}
		return fmt.Errorf("catalog.source is required. Set TONEHUB_CATALOG_URL or edit %s (create with 'tonehub config init')", defaultPath)
	}
	if c.Catalog.TimeoutSeconds < 0 {
		return errors.New("catalog.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.MaxResults < 1 || c.Filter.MaxResults > maxMaxResults {
		return fmt.Errorf("filter.max_results must be between 1 and %d", maxMaxResults)
	}
	if c.Filter.FallbackType == "" && len(c.Filter.FallbackExtensions) > 0 {
		return errors.New("filter.fallback_type must be set when fallback_extensions are configured")
	}
	return nil
}

func (c *Config) validateEntitlement() error {
	if c.Entitlement.UnlockKey == "" {
		return errors.New("entitlement.unlock_key must be set (or export TONEHUB_UNLOCK_KEY)")
	}
	return nil
}

func (c *Config) validatePreview() error {
	p := c.Preview
	if !p.Enabled {
		return nil
	}
	if p.SampleRate < 8000 || p.SampleRate > 192000 {
		return errors.New("preview.sample_rate must be between 8000 and 192000")
	}
	if p.BurstHz <= 0 || p.BurstHz >= float64(p.SampleRate)/2 {
		return errors.New("preview.burst_hz must be positive and below Nyquist")
	}
	if p.BurstMillis < 50 || p.BurstMillis > 5000 {
		return errors.New("preview.burst_ms must be between 50 and 5000")
	}
	if p.AttackMillis < 0 || p.AttackMillis >= p.BurstMillis {
		return errors.New("preview.attack_ms must be >= 0 and shorter than burst_ms")
	}
	if p.MaxTailMillis < 0 {
		return errors.New("preview.max_tail_ms must be >= 0")
	}
	if p.LowpassHz <= 0 || p.LowpassHz >= float64(p.SampleRate)/2 {
		return errors.New("preview.lowpass_hz must be positive and below Nyquist")
	}
	if p.OutputPeak <= 0 || p.OutputPeak > 1 {
		return errors.New("preview.output_peak must be in (0, 1]")
	}
	if len(p.PreviewableTypes) == 0 {
		return errors.New("preview.previewable_types must list at least one type")
	}
	if p.FetchTimeoutSeconds < 0 {
		return errors.New("preview.fetch_timeout_seconds must be >= 0")
	}
	if p.MaxFetchBytes <= 0 {
		return errors.New("preview.max_fetch_bytes must be positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.RemoteStrategy {
	case RemoteStrategyClipboard:
		if c.Download.RcloneRemote == "" {
			return errors.New("download.rclone_remote is required for the clipboard strategy")
		}
	case RemoteStrategySearch:
		parsed, err := url.Parse(c.Download.SearchURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return errors.New("download.search_url must be an absolute URL for the search strategy")
		}
	default:
		return fmt.Errorf("download.remote_strategy: unsupported value %q (use %q or %q)",
			c.Download.RemoteStrategy, RemoteStrategyClipboard, RemoteStrategySearch)
	}
	if c.Download.TimeoutSeconds < 0 {
		return errors.New("download.timeout_seconds must be >= 0")
	}
	if c.Download.MinFreeMiB < 0 {
		return errors.New("download.min_free_mib must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetainRuns < 0 {
		return errors.New("logging.retain_runs must be >= 0")
	}
	return nil
}

func (c *Config) validatePacks() error {
	seen := make(map[string]struct{}, len(c.Packs))
	for i, p := range c.Packs {
		if p.Name == "" {
			return fmt.Errorf("packs[%d].name must be set", i)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("packs: duplicate name %q", p.Name)
		}
		seen[key] = struct{}{}
		if len(p.Keywords) == 0 {
			return fmt.Errorf("packs[%d] (%s) must list at least one keyword", i, p.Name)
		}
	}
	return nil
}
