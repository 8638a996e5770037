package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tonehub/internal/app"
	"tonehub/internal/config"
	"tonehub/internal/logging"
	"tonehub/internal/server"
)

// ErrAlreadyRunning reports a second server against the same state directory.
var ErrAlreadyRunning = errors.New("another tonehub server is running")

// Options configures the server process.
type Options struct {
	LogLevel    string
	Development bool
	// Diagnostic tees a debug-level JSON log into log_dir/debug.
	Diagnostic bool
	Ephemeral  bool
	Mute       bool
	// Ready, when set, receives the bound address once the API listens.
	Ready func(addr string)
}

// Run serves the local API until cmdCtx is cancelled or the process receives
// SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "tonehub-server.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire server lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer lock.Unlock() //nolint:errcheck

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tonehub-%s.log", runID))
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if opts.Diagnostic {
		logger = withDiagnostics(logger, cfg, runID)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update tonehub.log link: %v\n", err)
	}
	logging.PruneRunLogs(logger,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tonehub-*.log", Keep: cfg.Logging.RetainRuns, Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: filepath.Join(cfg.Paths.LogDir, "debug"), Pattern: "tonehub-*.log", Keep: cfg.Logging.RetainRuns},
	)

	pidPath := filepath.Join(cfg.Paths.StateDir, "tonehub.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	rt, err := app.Open(signalCtx, cfg, app.Options{Logger: logger, Ephemeral: opts.Ephemeral, Mute: opts.Mute})
	if err != nil {
		logger.Error("open runtime", logging.Error(err))
		return err
	}
	defer rt.Close()

	library, err := rt.Library(signalCtx)
	if err != nil {
		logging.ErrorWithContext(logger, "catalog load failed", "catalog_load_failed",
			logging.Error(err),
			logging.String("source", cfg.Catalog.Source),
			logging.String(logging.FieldErrorHint, "check catalog.source and network access"),
			logging.String(logging.FieldImpact, "server did not start"),
		)
		return err
	}

	srv, err := server.New(cfg.Server.Bind, server.Deps{
		Library:   library,
		Gate:      rt.Gate(),
		Preview:   rt.Preview(),
		Downloads: rt.Downloads(),
		Token:     cfg.Server.APIToken,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	if err := srv.Start(signalCtx); err != nil {
		return err
	}
	defer srv.Stop()

	logStartupSnapshot(logger, rt, library.Inventory().Len(), srv.Addr())
	if opts.Ready != nil {
		opts.Ready(srv.Addr())
	}

	<-signalCtx.Done()
	logger.Info("tonehub server shutting down")
	return nil
}

func withDiagnostics(logger *slog.Logger, cfg *config.Config, runID string) *slog.Logger {
	sessionID := uuid.NewString()
	debugPath := filepath.Join(cfg.Paths.LogDir, "debug", fmt.Sprintf("tonehub-%s.log", runID))
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to create debug log directory: %v\n", err)
		return logger
	}
	debugLogger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{debugPath},
		Development: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize debug logger: %v\n", err)
		return logger
	}
	logger = logging.TeeLogger(logger, debugLogger.Handler())
	logger.Info("diagnostic mode enabled",
		logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
		logging.String(logging.FieldCorrelationID, sessionID),
		logging.String("debug_log_path", debugPath),
	)
	return logger
}

func logStartupSnapshot(logger *slog.Logger, rt *app.App, items int, addr string) {
	cfg := rt.Config()
	logger.Info("startup snapshot",
		logging.String(logging.FieldEventType, "startup_snapshot"),
		logging.String("address", addr),
		logging.Int("catalog_items", items),
		logging.Bool("catalog_remote", cfg.CatalogIsRemote()),
		logging.String("entitlement", rt.Gate().State().String()),
		logging.Bool("audio_preview", rt.Preview().Supported()),
		logging.String("remote_strategy", string(rt.Downloads().RemoteAction())),
		logging.Bool("api_token_present", strings.TrimSpace(cfg.Server.APIToken) != ""),
	)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "tonehub.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
