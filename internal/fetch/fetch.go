// Package fetch downloads landing page markup over HTTP.
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thoreinstein/pagecheck/internal/document"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/logging"
)

// Defaults applied to zero Options fields.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultMaxBytes  = 5 << 20
	DefaultUserAgent = "pagecheck/1 (+landing page audit)"
)

// ErrTooLarge is returned when a page exceeds the configured size.
var ErrTooLarge = errors.New("page exceeds size limit")

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Fetcher retrieves pages. It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{client: client, userAgent: opts.UserAgent, maxBytes: opts.MaxBytes}
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Fetch downloads the body of rawURL and converts it to UTF-8 using the
// charset of the Content-Type header or of the page itself. Any failure,
// including a non-2xx status, matches errors.ErrFetch. MaxBytes limits the
// body before decoding.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errors.Wrapf(errors.ErrFetch, "not an http(s) URL: %s", logging.MaskURL(rawURL))
	}
	logger := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrFetch), "building request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrFetch), "requesting page")
	}
	defer resp.Body.Close()

	logger.Debug("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(errors.ErrFetch, "unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrFetch), "reading response body")
	}
	if int64(len(body)) > f.maxBytes {
		return nil, errors.Mark(errors.Wrapf(ErrTooLarge, "more than %d bytes", f.maxBytes), errors.ErrFetch)
	}

	text, enc, err := document.Decode(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, errors.Mark(err, errors.ErrFetch)
	}
	logger.Log(ctx, logging.LevelTrace, "page body",
		slog.Int("bytes", len(body)),
		slog.String("charset", enc),
	)
	return text, nil
}
