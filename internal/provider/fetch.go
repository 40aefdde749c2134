package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matsen/motherload/internal/ratelimit"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 20 * time.Second

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "motherload/1.0"

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 16 << 20

// Fetcher performs rate-limited GET requests that decode JSON bodies.
// One Fetcher is shared by every provider so that the interval holds
// across all of them.
type Fetcher struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	userAgent  string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a Fetcher that waits on limiter before every request.
// A nil limiter disables throttling.
func NewFetcher(limiter *ratelimit.Limiter, opts ...FetcherOption) *Fetcher {
	if limiter == nil {
		limiter = ratelimit.New(0)
	}
	f := &Fetcher{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    limiter,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchJSON issues a GET for url and decodes the JSON body into v.
// Extra headers are added to the request as given.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, v any, headers map[string]string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)
	for k, val := range headers {
		if val != "" {
			req.Header.Set(k, val)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, url); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, url string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}
