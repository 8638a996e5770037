package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"tonehub/internal/catalog"
	"tonehub/internal/config"
)

// Strategy delivers an item whose location is an opaque remote path.
type Strategy interface {
	Action() Action
	Deliver(ctx context.Context, item catalog.Item) (Result, error)
}

// ClipboardStrategy places an rclone copy command on the clipboard.
type ClipboardStrategy struct {
	Remote string
	// Write defaults to clipboard.WriteAll.
	Write func(string) error
}

func (s ClipboardStrategy) Action() Action { return ActionClipboard }

func (s ClipboardStrategy) Deliver(_ context.Context, item catalog.Item) (Result, error) {
	command := RcloneCommand(s.Remote, item.Location.Raw)
	write := s.Write
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(command); err != nil {
		return Result{}, err
	}
	return Result{
		Action:  ActionClipboard,
		ItemID:  item.ID,
		Command: command,
		Message: "Transfer command copied to the clipboard; paste it into a terminal with rclone configured.",
	}, nil
}

// SearchStrategy opens the remote-storage search scoped to the item's exact name.
type SearchStrategy struct {
	BaseURL string
	// Open defaults to browser.OpenURL.
	Open func(string) error
}

func (s SearchStrategy) Action() Action { return ActionSearch }

func (s SearchStrategy) Deliver(_ context.Context, item catalog.Item) (Result, error) {
	target, err := SearchURL(s.BaseURL, item.Name)
	if err != nil {
		return Result{}, err
	}
	open := s.Open
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(target); err != nil {
		return Result{}, err
	}
	return Result{
		Action:  ActionSearch,
		ItemID:  item.ID,
		URL:     target,
		Message: "Opened the storage search for this item.",
	}, nil
}

// NewStrategy builds the deployment's remote strategy from configuration.
func NewStrategy(cfg config.Download) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.RemoteStrategy)) {
	case config.RemoteStrategyClipboard:
		return ClipboardStrategy{Remote: cfg.RcloneRemote}, nil
	case config.RemoteStrategySearch:
		if _, err := SearchURL(cfg.SearchURL, "check"); err != nil {
			return nil, err
		}
		return SearchStrategy{BaseURL: cfg.SearchURL}, nil
	default:
		return nil, fmt.Errorf("unknown remote strategy %q", cfg.RemoteStrategy)
	}
}

// RcloneCommand formats the transfer command for a remote path. A location
// that already names a remote ("name:path") is used verbatim; otherwise it
// is joined under remote.
func RcloneCommand(remote, location string) string {
	return fmt.Sprintf("rclone copy %q .", remoteSpec(remote, location))
}

func remoteSpec(remote, location string) string {
	location = strings.TrimSpace(location)
	if hasRemotePrefix(location) || strings.TrimSpace(remote) == "" {
		return location
	}
	return strings.TrimRight(strings.TrimSpace(remote), "/") + "/" + strings.TrimLeft(location, "/")
}

func hasRemotePrefix(location string) bool {
	colon := strings.IndexByte(location, ':')
	if colon <= 0 {
		return false
	}
	return !strings.ContainsAny(location[:colon], `/\`)
}

// SearchURL builds base?q="<name>".
func SearchURL(base, name string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New("search url must be absolute http(s)")
	}
	q := u.Query()
	q.Set("q", `"`+name+`"`)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
