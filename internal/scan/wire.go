package scan

import (
	"go.uber.org/zap"

	"github.com/matsen/motherload/internal/cache"
	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/crossref"
	"github.com/matsen/motherload/internal/enrich"
	"github.com/matsen/motherload/internal/pdf"
	"github.com/matsen/motherload/internal/provider"
	"github.com/matsen/motherload/internal/ratelimit"
	"github.com/matsen/motherload/internal/s2"
)

// NewPipeline wires the extractor and both providers from opts. The
// providers share one limiter and the cache c.
func NewPipeline(opts *config.Options, c *cache.Cache, log *zap.Logger) *enrich.Pipeline {
	limiter := ratelimit.FromSeconds(opts.RateLimitSeconds)
	fetcher := provider.NewFetcher(limiter)

	primary := crossref.NewClient(fetcher, c, crossref.WithMailto(opts.ProviderContactEmail))
	secondary := s2.NewClient(fetcher, c,
		s2.WithAPIKey(opts.S2APIKey),
		s2.WithFields(opts.SemanticFields),
	)

	extractor := pdf.NewExtractor(pdf.Options{
		MaxPagesText: opts.MaxPagesText,
		MaxPagesDOI:  opts.MaxPagesDOI,
	})

	return enrich.New(extractor, primary, secondary, enrich.Options{EnableOCR: opts.EnableOCR}, log)
}

// Open builds a Runner backed by the persistent cache and real providers.
func Open(opts *config.Options, log *zap.Logger, options ...Option) *Runner {
	c := cache.Open(opts.ResolvedCachePath(), log)
	return NewRunner(opts, NewPipeline(opts, c, log), c, log, options...)
}
