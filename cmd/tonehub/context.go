package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tonehub/internal/api"
	"tonehub/internal/app"
	"tonehub/internal/config"
	"tonehub/internal/logging"
)

type rootFlags struct {
	config    string
	json      bool
	ephemeral bool
	logLevel  string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// appOptions lets tests swap audio and clipboard collaborators.
	appOptions app.Options
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.flags != nil {
			path = strings.TrimSpace(c.flags.config)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.flags == nil {
		return ""
	}
	return strings.TrimSpace(c.flags.config)
}

func (c *commandContext) jsonOutput() bool {
	return c.flags != nil && c.flags.json
}

func (c *commandContext) logger(cfg *config.Config) *slog.Logger {
	level := "warn"
	if c.flags != nil && strings.TrimSpace(c.flags.logLevel) != "" {
		level = c.flags.logLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withRuntime assembles the shared components for one command and releases
// them when fn returns.
func (c *commandContext) withRuntime(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	opts := c.appOptions
	if opts.Logger == nil {
		opts.Logger = c.logger(cfg)
	}
	if c.flags != nil && c.flags.ephemeral {
		opts.Ephemeral = true
	}
	rt, err := app.Open(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// withLibrary is withRuntime plus a loaded catalog.
func (c *commandContext) withLibrary(ctx context.Context, fn func(*app.App, *api.Library) error) error {
	return c.withRuntime(ctx, func(rt *app.App) error {
		lib, err := rt.Library(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return fn(rt, lib)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
