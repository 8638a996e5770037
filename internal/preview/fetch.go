package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes of an IR.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over HTTP(S).
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	// MaxBytes caps the body; zero means unlimited.
	MaxBytes int64
}

// NewHTTPFetcher builds a fetcher with an optional client timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: strings.TrimSpace(userAgent),
		MaxBytes:  maxBytes,
	}
}

// ErrTooLarge reports a body above MaxBytes.
var ErrTooLarge = errors.New("response exceeds size limit")

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	reader := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		if resp.ContentLength > f.MaxBytes {
			return nil, ErrTooLarge
		}
		reader = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
