package s2

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matsen/motherload/internal/cache"
	"github.com/matsen/motherload/internal/provider"
)

// BaseURL is the Semantic Scholar Graph API base URL.
const BaseURL = "https://api.semanticscholar.org/graph/v1"

// Client looks up papers on Semantic Scholar through a shared Fetcher,
// consulting the enrichment cache first.
type Client struct {
	fetcher *provider.Fetcher
	cache   *cache.Cache
	baseURL string
	fields  string
	apiKey  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key sent as x-api-key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithFields sets the comma-separated field list requested.
func WithFields(fields string) ClientOption {
	return func(c *Client) {
		if fields != "" {
			c.fields = fields
		}
	}
}

// NewClient creates a Semantic Scholar client. A nil cache is replaced by
// an in-memory one.
func NewClient(fetcher *provider.Fetcher, c *cache.Cache, opts ...ClientOption) *Client {
	if c == nil {
		c = cache.New("", nil)
	}
	cl := &Client{
		fetcher: fetcher,
		cache:   c,
		baseURL: BaseURL,
		fields:  DefaultFields,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

func (c *Client) headers() map[string]string {
	return map[string]string{"x-api-key": c.apiKey}
}

// searchFieldList makes sure a search asks for the identifiers it maps.
func (c *Client) searchFieldList() string {
	if strings.Contains(c.fields, "externalIds") {
		return c.fields
	}
	return c.fields + ",externalIds"
}

// LookupDOI fetches the paper registered under doi. Failures are returned
// without being cached so that the next run retries.
func (c *Client) LookupDOI(ctx context.Context, doi string) (provider.Fields, error) {
	if v, ok := c.cache.Get(string(provider.KindSemantic), doi); ok {
		return provider.Fields(v), nil
	}

	u := fmt.Sprintf("%s/paper/DOI:%s?fields=%s", c.baseURL, url.PathEscape(doi), url.QueryEscape(c.fields))
	var paper S2Paper
	if err := c.fetcher.FetchJSON(ctx, u, &paper, c.headers()); err != nil {
		return nil, fmt.Errorf("semantic scholar lookup %s: %w", doi, err)
	}

	fields := MapPaper(paper, false)
	c.cache.Set(string(provider.KindSemantic), doi, cache.Value(fields))
	return fields, nil
}

// SearchTitle returns the top hit for "title authors". A miss or a failed
// call is cached as "no result"; cancellation is not.
func (c *Client) SearchTitle(ctx context.Context, title, authors, year string) (provider.Fields, error) {
	key := provider.SearchKey(title, authors, year)
	if v, ok := c.cache.Get(string(provider.KindSemanticSearch), key); ok {
		return provider.Fields(v), nil
	}

	query := title
	if authors != "" {
		query = title + " " + authors
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", "1")
	q.Set("fields", c.searchFieldList())

	var resp SearchResponse
	err := c.fetcher.FetchJSON(ctx, c.baseURL+"/paper/search?"+q.Encode(), &resp, c.headers())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.cache.Set(string(provider.KindSemanticSearch), key, nil)
		return provider.Fields{}, fmt.Errorf("semantic scholar search: %w", err)
	}

	fields := provider.Fields{}
	if len(resp.Data) > 0 {
		fields = MapPaper(resp.Data[0], true)
	}
	c.cache.Set(string(provider.KindSemanticSearch), key, cache.Value(fields))
	return fields, nil
}
