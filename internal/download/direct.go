package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"tonehub/internal/catalog"
	"tonehub/internal/fileutil"
	"tonehub/internal/logging"
	"tonehub/internal/textutil"
)

// DirectTransfer streams HTTP(S) items into Dir.
type DirectTransfer struct {
	Dir       string
	Client    *http.Client
	UserAgent string
	// MinFreeBytes is the headroom required beyond the announced size.
	MinFreeBytes uint64
	// FreeBytes defaults to fileutil.FreeBytes.
	FreeBytes func(string) (uint64, error)
	Logger    *slog.Logger
}

func (d *DirectTransfer) Deliver(ctx context.Context, item catalog.Item) (Result, error) {
	logger := logging.WithContext(ctx, d.logger())
	if err := fileutil.EnsureWritableDir(d.Dir); err != nil {
		return Result{}, err
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.Location.Raw, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := d.preflight(resp.ContentLength); err != nil {
		return Result{}, err
	}

	dst := fileutil.UniquePath(d.Dir, fileName(item))
	written, err := fileutil.StreamToFile(dst, resp.Body, 0o644)
	if err != nil {
		return Result{}, err
	}
	logger.Info("download saved",
		logging.String("path", written.Path),
		logging.Int64("bytes", written.Bytes),
		logging.String("sha256", written.SHA256))
	return Result{
		Action:  ActionDirect,
		ItemID:  item.ID,
		Path:    written.Path,
		Bytes:   written.Bytes,
		SHA256:  written.SHA256,
		Message: "Saved to " + written.Path,
	}, nil
}

func (d *DirectTransfer) preflight(contentLength int64) error {
	free := d.FreeBytes
	if free == nil {
		free = fileutil.FreeBytes
	}
	available, err := free(d.Dir)
	if err != nil {
		// Capacity is advisory; the copy itself reports a full disk.
		d.logger().Debug("free space check unavailable", logging.Error(err))
		return nil
	}
	need := d.MinFreeBytes
	if contentLength > 0 {
		need += uint64(contentLength)
	}
	if available < need {
		return fmt.Errorf("%w: need %d bytes, %d available in %s", ErrInsufficientSpace, need, available, d.Dir)
	}
	return nil
}

func (d *DirectTransfer) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.NewNop()
	}
	return d.Logger
}

func fileName(item catalog.Item) string {
	rawPath := ""
	if u, err := url.Parse(item.Location.Raw); err == nil {
		rawPath = u.Path
	}
	fallback := item.Name
	if strings.TrimSpace(fallback) == "" {
		fallback = "item-" + item.ID
	}
	name := textutil.FileNameFromURL(rawPath, fallback)
	if path.Ext(name) == "" && item.Type == catalog.TypeIR {
		name += ".wav"
	}
	return name
}
