package crossref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matsen/motherload/internal/cache"
	"github.com/matsen/motherload/internal/provider"
)

// BaseURL is the Crossref REST API base URL.
const BaseURL = "https://api.crossref.org"

// DefaultMailto is used when no contact email is configured.
const DefaultMailto = "unknown@example.com"

// Client looks up works on Crossref through a shared Fetcher, consulting
// the enrichment cache first.
type Client struct {
	fetcher *provider.Fetcher
	cache   *cache.Cache
	baseURL string
	mailto  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMailto sets the contact email sent with every request.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		if email != "" {
			c.mailto = email
		}
	}
}

// NewClient creates a Crossref client. A nil cache is replaced by an
// in-memory one.
func NewClient(fetcher *provider.Fetcher, c *cache.Cache, opts ...ClientOption) *Client {
	if c == nil {
		c = cache.New("", nil)
	}
	cl := &Client{
		fetcher: fetcher,
		cache:   c,
		baseURL: BaseURL,
		mailto:  DefaultMailto,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// LookupDOI fetches the work registered for doi. Failures are returned
// without being cached so that the next run retries.
func (c *Client) LookupDOI(ctx context.Context, doi string) (provider.Fields, error) {
	if v, ok := c.cache.Get(string(provider.KindCrossref), doi); ok {
		return provider.Fields(v), nil
	}

	u := fmt.Sprintf("%s/works/%s?mailto=%s", c.baseURL, url.PathEscape(doi), url.QueryEscape(c.mailto))
	var resp workResponse
	if err := c.fetcher.FetchJSON(ctx, u, &resp, nil); err != nil {
		return nil, fmt.Errorf("crossref lookup %s: %w", doi, err)
	}

	fields := resp.Message.Fields()
	c.cache.Set(string(provider.KindCrossref), doi, cache.Value(fields))
	return fields, nil
}

// SearchTitle returns the best match for a title query, optionally narrowed
// by authors and a publication year. A miss or a failed call is cached as
// "no result"; cancellation is not.
func (c *Client) SearchTitle(ctx context.Context, title, authors, year string) (provider.Fields, error) {
	key := provider.SearchKey(title, authors, year)
	if v, ok := c.cache.Get(string(provider.KindCrossrefSearch), key); ok {
		return provider.Fields(v), nil
	}

	q := url.Values{}
	q.Set("query.title", title)
	q.Set("rows", "1")
	q.Set("mailto", c.mailto)
	if authors != "" {
		q.Set("query.author", authors)
	}
	if year != "" {
		q.Set("filter", fmt.Sprintf("from-pub-date:%s-01-01,until-pub-date:%s-12-31", year, year))
	}

	var resp searchResponse
	err := c.fetcher.FetchJSON(ctx, c.baseURL+"/works?"+q.Encode(), &resp, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.cache.Set(string(provider.KindCrossrefSearch), key, nil)
		return provider.Fields{}, fmt.Errorf("crossref search: %w", err)
	}

	fields := provider.Fields{}
	if len(resp.Message.Items) > 0 {
		fields = resp.Message.Items[0].searchFields()
	}
	c.cache.Set(string(provider.KindCrossrefSearch), key, cache.Value(fields))
	return fields, nil
}
