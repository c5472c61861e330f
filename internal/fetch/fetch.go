// Package fetch retrieves remote service descriptions over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "wsdlsync/1.0"

// DefaultMaxBodyBytes caps the size of a fetched document.
const DefaultMaxBodyBytes = 32 << 20

// Fetcher retrieves the body of a remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) ([]byte, error)
}

// Error is a FetchError: the resource was unreachable, returned a non-2xx
// status, or could not be read.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures an HTTPFetcher.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Headers      map[string]string
}

// DefaultOptions returns the fetch defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// IsFetchable reports whether identifier is a network resource this package
// can retrieve. Anything else is treated as a local path.
func IsFetchable(identifier string) bool {
	u, err := url.Parse(strings.TrimSpace(identifier))
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

// HTTPFetcher fetches documents with net/http. Concurrent fetches of the same
// URL share one request.
type HTTPFetcher struct {
	client  *http.Client
	options Options
	group   singleflight.Group
}

// NewHTTPFetcher creates a fetcher. A nil opts uses DefaultOptions.
func NewHTTPFetcher(opts *Options) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: o.Timeout},
		options: o,
	}
}

// Fetch returns the body of identifier. Failures are *Error values.
// The shared request is bounded by the client timeout only, so a caller
// giving up does not fail the others waiting on it.
func (f *HTTPFetcher) Fetch(ctx context.Context, identifier string) ([]byte, error) {
	if !IsFetchable(identifier) {
		return nil, &Error{URL: identifier, Message: "not a fetchable URL"}
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(identifier, func() (interface{}, error) {
		return f.get(shared, identifier)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, &Error{URL: identifier, Message: "fetch cancelled", Cause: ctx.Err()}
	}
}

func (f *HTTPFetcher) get(ctx context.Context, identifier string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identifier, nil)
	if err != nil {
		return nil, &Error{URL: identifier, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.options.UserAgent)
	for key, value := range f.options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: identifier, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			URL:        identifier,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.options.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{URL: identifier, Message: "failed to read response body", Cause: err}
	}
	if int64(len(body)) > f.options.MaxBodyBytes {
		return nil, &Error{URL: identifier, Message: fmt.Sprintf("response body exceeds %d bytes", f.options.MaxBodyBytes)}
	}
	return body, nil
}
