// Package scrape implements the HTML quote extractor.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"priceboard/internal/logging"
	"priceboard/internal/provider"
)

const (
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes = 4 << 20
)

// Extractor fetches a page and reads one integer quote out of it.
type Extractor struct {
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// timeout bounds each Extract call; zero disables the per-call deadline.
	timeout time.Duration
	// maxBody caps the bytes read from a response body.
	maxBody int64
	logger  *slog.Logger
}

// Option is a configuration option for the Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(e *Extractor) {
		e.httpClient = httpClient
	}
}

// WithHeader adds headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(e *Extractor) {
		for key, values := range header {
			for _, value := range values {
				e.header.Add(key, value)
			}
		}
	}
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// WithMaxBodyBytes caps the bytes read from each response.
func WithMaxBodyBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBody = n
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor. Without WithHTTPClient it uses http.DefaultClient.
func New(options ...Option) *Extractor {
	e := &Extractor{
		httpClient: http.DefaultClient,
		header:     http.Header{},
		timeout:    DefaultTimeout,
		maxBody:    DefaultMaxBodyBytes,
	}
	for _, option := range options {
		option(e)
	}
	e.logger = logging.Default(e.logger).With("component", "scrape")
	return e
}

var _ provider.Extractor = (*Extractor)(nil)

// Extract performs one fetch-and-parse cycle. It never returns a Go error:
// failures come back as an unavailable Result and are logged.
func (e *Extractor) Extract(ctx context.Context, url, selector string) provider.Result {
	v, err := e.extract(ctx, url, selector)
	if err != nil {
		e.logger.Warn("quote unavailable", "url", url, "cause", CauseOf(err), "error", err)
		return provider.Unavailable(err)
	}
	return provider.Available(v)
}

func (e *Extractor) extract(ctx context.Context, url, selector string) (v int64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = 0, &ExtractError{URL: url, Cause: CauseParse, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, &ExtractError{URL: url, Cause: CauseTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header = e.header.Clone()

	res, err := e.httpClient.Do(req)
	if err != nil {
		return 0, &ExtractError{URL: url, Cause: CauseTransport, Err: fmt.Errorf("performing request: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 2<<10))
		return 0, &ExtractError{URL: url, Cause: CauseStatus, Err: fmt.Errorf("%w: %d", ErrStatus, res.StatusCode)}
	}

	body, err := charset.NewReader(io.LimitReader(res.Body, e.maxBody), res.Header.Get("Content-Type"))
	if err != nil {
		return 0, &ExtractError{URL: url, Cause: CauseParse, Err: fmt.Errorf("decoding body: %w", err)}
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return 0, &ExtractError{URL: url, Cause: CauseParse, Err: fmt.Errorf("parsing html: %w", err)}
	}

	// An invalid selector matches nothing rather than failing.
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return 0, &ExtractError{URL: url, Cause: CauseNoMatch, Err: fmt.Errorf("%w: %s", ErrNoMatch, selector)}
	}

	v, err = ParseQuote(node.Text())
	if err != nil {
		cause := CauseNoDigits
		if errors.Is(err, ErrOverflow) {
			cause = CauseOverflow
		}
		return 0, &ExtractError{URL: url, Cause: cause, Err: err}
	}
	return v, nil
}
