package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tonehub/internal/api"
	"tonehub/internal/audio/speaker"
	"tonehub/internal/catalog"
	"tonehub/internal/config"
	"tonehub/internal/download"
	"tonehub/internal/entitlement"
	"tonehub/internal/filter"
	"tonehub/internal/logging"
	"tonehub/internal/preview"
	"tonehub/internal/statestore"
)

// Options adjusts how an App is assembled.
type Options struct {
	Logger *slog.Logger
	// Ephemeral keeps entitlement state in memory for this process only.
	Ephemeral bool
	// Mute replaces the audio device with a silent context.
	Mute bool
	// AudioFactory overrides the audio device factory.
	AudioFactory preview.ContextFactory
	// Download overrides dispatcher collaborators such as the remote strategy.
	Download download.Options
}

// App holds the components built from one configuration.
type App struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger

	store     statestore.KV
	closeKV   func() error
	gate      *entitlement.Gate
	downloads *download.Dispatcher

	libOnce sync.Once
	library *api.Library
	libErr  error

	previewOnce sync.Once
	preview     *preview.Engine
}

// Open builds the state store, entitlement gate and download dispatcher.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &App{cfg: cfg, opts: opts, logger: logger}

	if opts.Ephemeral {
		a.store = statestore.NewMemory()
	} else {
		store, err := statestore.Open(cfg.StatePath())
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		a.store = store
		a.closeKV = store.Close
	}

	gate, err := entitlement.New(ctx, a.store, entitlement.NewSharedSecretVerifier(cfg.Entitlement.UnlockKey), logger,
		entitlement.Options{StorageKey: cfg.Entitlement.StorageKey})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.gate = gate

	dlOpts := opts.Download
	if dlOpts.Logger == nil {
		dlOpts.Logger = logger
	}
	if dlOpts.UserAgent == "" {
		dlOpts.UserAgent = cfg.Catalog.UserAgent
	}
	downloads, err := download.New(cfg.Download, cfg.Paths.DownloadDir, dlOpts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.downloads = downloads
	return a, nil
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the root logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Gate returns the entitlement gate.
func (a *App) Gate() *entitlement.Gate { return a.gate }

// Downloads returns the download dispatcher.
func (a *App) Downloads() *download.Dispatcher { return a.downloads }

// Library loads the catalog on first call. A load failure is cached for the
// life of the App.
func (a *App) Library(ctx context.Context) (*api.Library, error) {
	a.libOnce.Do(func() {
		opts := catalog.LoadOptions{UserAgent: a.cfg.Catalog.UserAgent, Logger: a.logger}
		if secs := a.cfg.Catalog.TimeoutSeconds; secs > 0 {
			opts.Client = &http.Client{Timeout: time.Duration(secs) * time.Second}
		}
		a.library, a.libErr = api.OpenLibrary(ctx, a.cfg.Catalog.Source, opts,
			filter.RulesFromConfig(a.cfg.Filter), a.cfg.Packs, a.logger)
	})
	return a.library, a.libErr
}

// Preview opens the audio context on first call. The engine is always
// returned; Supported reports whether audio is actually available.
func (a *App) Preview() *preview.Engine {
	a.previewOnce.Do(func() {
		a.preview = preview.New(a.previewOptions())
	})
	return a.preview
}

// PreviewableTypes returns the configured previewable asset types.
func (a *App) PreviewableTypes() []catalog.Type {
	types := make([]catalog.Type, 0, len(a.cfg.Preview.PreviewableTypes))
	for _, t := range a.cfg.Preview.PreviewableTypes {
		types = append(types, catalog.Type(t))
	}
	return types
}

func (a *App) previewOptions() preview.Options {
	pc := a.cfg.Preview
	factory := a.opts.AudioFactory
	switch {
	case !pc.Enabled:
		factory = disabledFactory
	case factory != nil:
	case a.opts.Mute:
		factory = preview.NullFactory(pc.SampleRate)
	default:
		factory = speaker.Factory(pc.SampleRate)
	}
	return preview.Options{
		Factory:          factory,
		Fetcher:          preview.NewHTTPFetcher(time.Duration(pc.FetchTimeoutSeconds)*time.Second, a.cfg.Catalog.UserAgent, pc.MaxFetchBytes),
		Decoder:          preview.WAVDecoder{},
		Synth:            preview.SynthConfigFromConfig(pc),
		PreviewableTypes: a.PreviewableTypes(),
		Logger:           a.logger,
	}
}

func disabledFactory() (preview.Context, error) {
	return nil, errors.New("audio preview disabled in configuration")
}

// Close releases the preview engine and the state store.
func (a *App) Close() error {
	var errs []error
	if a.preview != nil {
		errs = append(errs, a.preview.Close())
	}
	if a.closeKV != nil {
		errs = append(errs, a.closeKV())
		a.closeKV = nil
	}
	return errors.Join(errs...)
}
