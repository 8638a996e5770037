package download

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tonehub/internal/catalog"
	"tonehub/internal/config"
	"tonehub/internal/entitlement"
	"tonehub/internal/logging"
	"tonehub/internal/services"
)

// Action is what Dispatch did.
type Action string

const (
	ActionPromptEntitlement Action = "prompt_entitlement"
	ActionDirect            Action = "direct"
	ActionClipboard         Action = "clipboard"
	ActionSearch            Action = "search"
)

// Result describes a dispatched download.
type Result struct {
	Action Action
	ItemID string
	// Path, Bytes and SHA256 are set for ActionDirect.
	Path   string
	Bytes  int64
	SHA256 string
	// Command is the clipboard text for ActionClipboard.
	Command string
	// URL is the opened search for ActionSearch.
	URL     string
	Message string
}

// Dispatcher chooses between the entitlement prompt, a direct transfer and
// the remote strategy.
type Dispatcher struct {
	direct *DirectTransfer
	remote Strategy
	logger *slog.Logger
}

// Options holds the collaborators of a Dispatcher.
type Options struct {
	Client    *http.Client
	UserAgent string
	Logger    *slog.Logger
	// Remote overrides the strategy built from configuration.
	Remote Strategy
	// FreeBytes overrides the free-space lookup.
	FreeBytes func(string) (uint64, error)
}

// New builds a Dispatcher writing direct transfers into downloadDir.
func New(cfg config.Download, downloadDir string, opts Options) (*Dispatcher, error) {
	if downloadDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "download", "new", "download directory is empty", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "download")

	remote := opts.Remote
	if remote == nil {
		var err error
		remote, err = NewStrategy(cfg)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "download", "new", "remote strategy", err)
		}
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	minFree := uint64(0)
	if cfg.MinFreeMiB > 0 {
		minFree = uint64(cfg.MinFreeMiB) << 20
	}
	return &Dispatcher{
		direct: &DirectTransfer{
			Dir:          downloadDir,
			Client:       client,
			UserAgent:    opts.UserAgent,
			MinFreeBytes: minFree,
			FreeBytes:    opts.FreeBytes,
			Logger:       logger,
		},
		remote: remote,
		logger: logger,
	}, nil
}

// RemoteAction reports the deployment's remote strategy.
func (d *Dispatcher) RemoteAction() Action { return d.remote.Action() }

// Dispatch handles a download request. A Locked state returns
// ActionPromptEntitlement with a nil error and performs no transfer.
func (d *Dispatcher) Dispatch(ctx context.Context, item catalog.Item, state entitlement.State) (Result, error) {
	ctx = services.WithItemID(ctx, item.ID)
	logger := logging.WithContext(ctx, d.logger)

	if state != entitlement.Unlocked {
		logger.Info("download requires entitlement", logging.String(logging.FieldEventType, "download_prompt"))
		return Result{
			Action:  ActionPromptEntitlement,
			ItemID:  item.ID,
			Message: "Unlock downloads with an access key or a purchase.",
		}, nil
	}

	var (
		res    Result
		err    error
		action Action
	)
	if item.Location.IsHTTP() {
		action = ActionDirect
		res, err = d.direct.Deliver(ctx, item)
	} else {
		action = d.remote.Action()
		res, err = d.remote.Deliver(ctx, item)
	}
	if err != nil {
		derr := &Error{Action: action, ItemID: item.ID, Name: item.Name, Err: err}
		hint := "retry the download"
		if errors.Is(err, ErrInsufficientSpace) {
			hint = "free disk space in the download directory"
		}
		logging.WarnWithContext(logger, "download failed", "download_failed",
			logging.String("action", string(action)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "item not delivered"))
		return Result{}, derr
	}
	logger.Info("download dispatched", logging.String("action", string(res.Action)))
	return res, nil
}
