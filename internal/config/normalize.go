package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeFilter()
	c.normalizeEntitlement()
	c.normalizePreview()
	c.normalizeDownload()
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if value, ok := os.LookupEnv("TONEHUB_API_TOKEN"); ok && c.Server.APIToken == "" {
		c.Server.APIToken = strings.TrimSpace(value)
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.normalizePacks()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return err
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	if value, ok := os.LookupEnv("TONEHUB_CATALOG_URL"); ok && strings.TrimSpace(value) != "" {
		c.Catalog.Source = value
	}
	c.Catalog.Source = strings.TrimSpace(c.Catalog.Source)
	if c.Catalog.Source != "" && !c.CatalogIsRemote() {
		if expanded, err := expandPath(c.Catalog.Source); err == nil {
			c.Catalog.Source = expanded
		}
	}
	c.Catalog.UserAgent = strings.TrimSpace(c.Catalog.UserAgent)
	if c.Catalog.UserAgent == "" {
		c.Catalog.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeFilter() {
	c.Filter.FallbackType = strings.TrimSpace(c.Filter.FallbackType)
	exts := make([]string, 0, len(c.Filter.FallbackExtensions))
	for _, ext := range c.Filter.FallbackExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Filter.FallbackExtensions = exts
}

func (c *Config) normalizeEntitlement() {
	if value, ok := os.LookupEnv("TONEHUB_UNLOCK_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Entitlement.UnlockKey = value
	}
	c.Entitlement.UnlockKey = strings.TrimSpace(c.Entitlement.UnlockKey)
	c.Entitlement.StorageKey = strings.TrimSpace(c.Entitlement.StorageKey)
	if c.Entitlement.StorageKey == "" {
		c.Entitlement.StorageKey = defaultEntitlementKey
	}
}

func (c *Config) normalizePreview() {
	types := make([]string, 0, len(c.Preview.PreviewableTypes))
	for _, t := range c.Preview.PreviewableTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	c.Preview.PreviewableTypes = types
}

func (c *Config) normalizeDownload() {
	c.Download.RemoteStrategy = strings.ToLower(strings.TrimSpace(c.Download.RemoteStrategy))
	if c.Download.RemoteStrategy == "" {
		c.Download.RemoteStrategy = defaultRemoteStrategy
	}
	c.Download.RcloneRemote = strings.TrimSpace(c.Download.RcloneRemote)
	c.Download.SearchURL = strings.TrimSpace(c.Download.SearchURL)
}

func (c *Config) normalizePacks() {
	packs := make([]Pack, 0, len(c.Packs))
	for _, p := range c.Packs {
		p.Name = strings.TrimSpace(p.Name)
		p.Description = strings.TrimSpace(p.Description)
		keywords := make([]string, 0, len(p.Keywords))
		for _, kw := range p.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		p.Keywords = keywords
		packs = append(packs, p)
	}
	c.Packs = packs
}
