package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/webtools"
)

// DefaultMaxBodyBytes bounds the size of a fetched page.
const DefaultMaxBodyBytes = 5 << 20

// Ensure Fetcher implements webtools.Fetcher at compile time.
var _ webtools.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// It does not execute JavaScript.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	allowPrivate bool
	userAgent    string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes sets the largest accepted response body.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithAllowPrivate permits requests to loopback and private addresses.
func WithAllowPrivate(allow bool) Option {
	return func(f *Fetcher) {
		f.allowPrivate = allow
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = NewClient(f.timeout, f.allowPrivate)

	return f
}

// Client returns the guarded client so other services can share it.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", webtools.Errorf(webtools.EINVALID, "invalid url %q: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", requestError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, rawURL); err != nil {
		return "", err
	}

	body, err := readLimited(resp.Body, f.maxBodyBytes)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// ValidateURL returns EINVALID unless rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return webtools.Errorf(webtools.EINVALID, "invalid url %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return webtools.Errorf(webtools.EINVALID, "url %q must use http or https", rawURL)
	}
	if u.Hostname() == "" {
		return webtools.Errorf(webtools.EINVALID, "url %q has no host", rawURL)
	}
	return nil
}

// requestError keeps domain errors raised by the address guard and context
// errors, and reports everything else as an unreachable host.
func requestError(ctx context.Context, rawURL string, err error) error {
	var e *webtools.Error
	if errors.As(err, &e) {
		return e
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return webtools.Errorf(webtools.EUNAVAILABLE, "fetch %s: %v", rawURL, err)
}

func checkStatus(resp *http.Response, rawURL string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode >= 500:
		return webtools.Errorf(webtools.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, rawURL)
	default:
		return webtools.Errorf(webtools.EINVALID, "HTTP %d for %s", resp.StatusCode, rawURL)
	}
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, webtools.Errorf(webtools.EUNAVAILABLE, "read response: %v", err)
	}
	if int64(len(body)) > limit {
		return nil, webtools.Errorf(webtools.EINVALID, "response body exceeds %d bytes", limit)
	}
	return body, nil
}
