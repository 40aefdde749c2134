// Package enrich turns one PDF into a candidate catalog record by combining
// locally extracted signals with lookups against two metadata providers.
package enrich

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/matsen/motherload/internal/pdf"
	"github.com/matsen/motherload/internal/provider"
	"github.com/matsen/motherload/internal/reference"
)

// Lookup is a metadata provider.
type Lookup interface {
	LookupDOI(ctx context.Context, doi string) (provider.Fields, error)
	SearchTitle(ctx context.Context, title, authors, year string) (provider.Fields, error)
}

// Extractor reads local signals from a file.
type Extractor interface {
	Extract(path string) (*pdf.Signals, error)
}

// Options are the pipeline switches taken from configuration.
type Options struct {
	EnableOCR bool
}

// Result is the outcome for one file. Record is nil when Errors is not
// empty.
type Result struct {
	Path     string
	Record   *reference.Record
	Warnings []string
	Errors   []string
}

// Pipeline enriches documents. It is safe for concurrent use as long as its
// collaborators are.
type Pipeline struct {
	extractor Extractor
	primary   Lookup
	secondary Lookup
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used for added_at.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline. Either provider may be nil to skip it.
func New(extractor Extractor, primary, secondary Lookup, opts Options, log *zap.Logger, options ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		extractor: extractor,
		primary:   primary,
		secondary: secondary,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Process enriches the file at path. Per-file problems are reported in the
// Result; the returned error is only set when ctx is done.
func (p *Pipeline) Process(ctx context.Context, path, collection, source string) (Result, error) {
	res := Result{Path: path}

	sig, err := p.extractor.Extract(path)
	if err != nil {
		var fe *pdf.FileError
		code := pdf.CodeParseFail
		if errors.As(err, &fe) {
			code = fe.Code
		}
		p.log.Debug("extraction failed", zap.String("path", path), zap.String("code", code), zap.Error(err))
		res.Errors = append(res.Errors, code)
		return res, nil
	}

	if sig.DOI == "" {
		res.Warnings = append(res.Warnings, WarnDOINotFound)
	}
	if p.opts.EnableOCR && (sig.Text == "" || (sig.DOI == "" && sig.ISBN == "")) {
		res.Warnings = append(res.Warnings, WarnOCRUnavailable)
	}

	local := localGuess(sig)
	fields := provider.Fields{}
	fields.Set(provider.FieldDOI, sig.DOI)

	if doi := fields.Get(provider.FieldDOI); doi != "" {
		if err := p.lookupDOI(ctx, doi, fields, &res.Warnings); err != nil {
			return res, err
		}
	} else if query := searchQuery(local, sig.FromFilename); query.Get(provider.FieldTitle) != "" {
		title := query.Get(provider.FieldTitle)
		authors, year := query.Get(provider.FieldAuthors), query.Get(provider.FieldYear)
		if err := p.search(ctx, title, authors, year, fields, &res.Warnings); err != nil {
			return res, err
		}
		if doi := fields.Get(provider.FieldDOI); doi != "" {
			// backfill journal/volume/issue/pages from the DOI just found
			if err := p.lookupDOI(ctx, doi, fields, nil); err != nil {
				return res, err
			}
		}
	}

	fields.FillFrom(local)
	fields.FillFrom(guessFields(sig.FromFilename))

	rec := &reference.Record{
		ISBN:       sig.ISBN,
		FileHash:   sig.FileHash,
		PDFPath:    path,
		Collection: collection,
		Source:     source,
		AddedAt:    p.now().UTC().Format(time.RFC3339),
	}
	for name, value := range fields {
		rec.Set(name, value)
	}
	rec.Type = reference.ClassifyType(rec.ISBN, rec.DOI)

	if rec.Title == "" || rec.Authors == "" || rec.Year == "" {
		res.Warnings = append(res.Warnings, WarnMissingCore)
	}
	res.Record = rec
	return res, nil
}

// lookupDOI queries both providers by DOI, the primary first. A nil warns
// suppresses warnings.
func (p *Pipeline) lookupDOI(ctx context.Context, doi string, fields provider.Fields, warns *[]string) error {
	steps := []struct {
		lookup Lookup
		warn   string
	}{
		{p.primary, WarnCrossrefFail},
		{p.secondary, WarnSemanticFail},
	}
	for _, s := range steps {
		if s.lookup == nil {
			continue
		}
		got, err := s.lookup.LookupDOI(ctx, doi)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			p.log.Debug("doi lookup failed", zap.String("doi", doi), zap.Error(err))
		}
		if err != nil || got.Empty() {
			if warns != nil {
				*warns = append(*warns, s.warn)
			}
			continue
		}
		fields.FillFrom(got)
	}
	return nil
}

// search queries both providers by title.
func (p *Pipeline) search(ctx context.Context, title, authors, year string, fields provider.Fields, warns *[]string) error {
	steps := []struct {
		lookup Lookup
		warn   string
	}{
		{p.primary, WarnCrossrefSearchFail},
		{p.secondary, WarnSemanticSearchFail},
	}
	for _, s := range steps {
		if s.lookup == nil {
			continue
		}
		got, err := s.lookup.SearchTitle(ctx, title, authors, year)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			p.log.Debug("title search failed", zap.String("title", title), zap.Error(err))
		}
		if err != nil || got.Empty() {
			*warns = append(*warns, s.warn)
			continue
		}
		fields.FillFrom(got)
	}
	return nil
}

// localGuess merges the embedded info dictionary with the first-page
// heuristics, the info dictionary winning.
func localGuess(sig *pdf.Signals) provider.Fields {
	f := provider.Fields{}
	f.Set(provider.FieldTitle, sig.Info.Title)
	f.Set(provider.FieldAuthors, sig.Info.Author)
	f.Set(provider.FieldYear, sig.Info.Year)
	f.FillFrom(guessFields(sig.FromText))
	return f
}

// searchQuery is the local guess with the file name filling its gaps.
func searchQuery(local provider.Fields, fromFilename pdf.Guess) provider.Fields {
	q := provider.Fields{}
	q.FillFrom(local)
	q.FillFrom(guessFields(fromFilename))
	return q
}

func guessFields(g pdf.Guess) provider.Fields {
	f := provider.Fields{}
	f.Set(provider.FieldTitle, g.Title)
	f.Set(provider.FieldAuthors, g.Authors)
	f.Set(provider.FieldYear, g.Year)
	return f
}
