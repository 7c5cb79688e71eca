// Package fetch retrieves raw spreadsheet bytes from remote locations.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
)

const (
	// DefaultTimeout bounds each HTTP attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 3
	// DefaultMaxBytes caps the size of a downloaded document.
	DefaultMaxBytes = 100 << 20
)

// Fetcher retrieves the raw bytes behind a locator in the requested format.
type Fetcher interface {
	Fetch(ctx context.Context, locator string, format parser.Format) ([]byte, error)
}

// Options configures the HTTP fetchers.
type Options struct {
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of retries after the first attempt.
	// If nil, defaults to DefaultRetries.
	Retries *int
	// RetryWaitMin and RetryWaitMax bound the exponential backoff.
	// Zero values mean 1s and 30s.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// MaxBytes caps the response size. Zero means DefaultMaxBytes.
	MaxBytes int64
	// UserAgent is sent with every request when set.
	UserAgent string
	// BaseURL overrides the Google Docs origin.
	BaseURL string
	// Logger receives retry diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// MaxRetries returns the effective retry count.
func (o Options) MaxRetries() int {
	if o.Retries != nil {
		return max(*o.Retries, 0)
	}
	return DefaultRetries
}

// client is the retrying HTTP getter shared by the fetchers.
type client struct {
	http      *retryablehttp.Client
	maxBytes  int64
	userAgent string
	logger    *slog.Logger
}

func newClient(opts Options) *client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.MaxRetries()
	rc.Logger = logger
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.HTTPClient.Timeout = opts.Timeout
	if rc.HTTPClient.Timeout <= 0 {
		rc.HTTPClient.Timeout = DefaultTimeout
	}

	c := &client{
		http:      rc,
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
	if c.maxBytes <= 0 {
		c.maxBytes = DefaultMaxBytes
	}
	return c
}

// checkRetry retries transport errors, 429 and the transient 5xx statuses.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %s", errUnexpectedRes, resp.Status)}
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "text/html" {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: errNotPublic}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w of %d bytes", errTooLarge, c.maxBytes)}
	}

	c.logger.Debug("fetched document",
		slog.String("url", url),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// GoogleSheets fetches Google Sheets documents through their export endpoint.
type GoogleSheets struct {
	c       *client
	baseURL string
}

// NewGoogleSheets creates a Google Sheets fetcher.
func NewGoogleSheets(opts Options) *GoogleSheets {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &GoogleSheets{c: newClient(opts), baseURL: base}
}

// Fetch exports the document behind a sheet URL or bare id. A gid in the
// URL selects the worksheet.
func (g *GoogleSheets) Fetch(ctx context.Context, locator string, format parser.Format) ([]byte, error) {
	id, gid, err := sheetLocator(locator)
	if err != nil {
		return nil, &FetchError{URL: locator, Err: err}
	}
	exportURL, err := ExportURL(g.baseURL, id, format, gid)
	if err != nil {
		return nil, &FetchError{URL: locator, Err: err}
	}
	return g.c.get(ctx, exportURL)
}

// HTTP fetches a URL as-is, ignoring the requested format.
type HTTP struct {
	c *client
}

// NewHTTP creates a plain HTTP fetcher.
func NewHTTP(opts Options) *HTTP {
	return &HTTP{c: newClient(opts)}
}

// Fetch downloads locator.
func (h *HTTP) Fetch(ctx context.Context, locator string, _ parser.Format) ([]byte, error) {
	return h.c.get(ctx, locator)
}
