// Package scan drives full library scans and single-file ingests: a bounded
// pool runs the enrichment pipeline and a single consumer merges every
// result into the catalog.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/enrich"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/report"
	"github.com/matsen/motherload/internal/storage"
)

// Sources stamped on new rows.
const (
	SourceScan   = "scan"
	SourceManual = "manual"
)

// Processor enriches one file.
type Processor interface {
	Process(ctx context.Context, path, collection, source string) (enrich.Result, error)
}

// CacheSaver persists the enrichment cache.
type CacheSaver interface {
	Save()
}

// Progress reports one merged file.
type Progress struct {
	Done  int
	Total int
	Path  string
}

// Runner owns one library's scan and ingest runs.
type Runner struct {
	opts     *config.Options
	proc     Processor
	cache    CacheSaver
	log      *zap.Logger
	now      func() time.Time
	progress func(Progress)
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the run clock.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithProgress registers a callback invoked after each merged file.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a Runner. cache may be nil.
func NewRunner(opts *config.Options, proc Processor, cache CacheSaver, log *zap.Logger, options ...Option) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		opts:  opts,
		proc:  proc,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Outcome is what a scan produced.
type Outcome struct {
	Summary     *report.Summary
	SummaryPath string
	Records     []reference.Record
	Interrupted bool
}

// Scan processes every PDF under the configured pdf root and writes the
// catalog, exports, reports and run summary. On cancellation the results
// already merged are still written and Outcome.Interrupted is set.
func (r *Runner) Scan(ctx context.Context) (*Outcome, error) {
	root := r.opts.LibraryRoot
	pdfRoot := r.opts.ResolvedPDFRoot()
	tag := report.Tag(r.now())
	summary := report.NewSummary(tag)

	existing, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		return nil, err
	}

	paths, err := FindPDFs(pdfRoot)
	if err != nil {
		return nil, err
	}
	summary.TotalPDFs = len(paths)

	r.log.Info("scan started",
		zap.String("run_id", summary.RunID),
		zap.String("pdf_root", pdfRoot),
		zap.Int("pdfs", len(paths)),
		zap.Int("catalog_rows", len(existing)),
		zap.Int("workers", r.opts.MaxWorkers),
	)

	engine := catalog.NewEngine(existing, tag)
	engine.SetClock(r.now)

	results := make(chan enrich.Result)
	var details []report.Detail
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			details = append(details, r.merge(engine, res, summary))
			if r.progress != nil {
				r.progress(Progress{Done: len(details), Total: len(paths), Path: res.Path})
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxWorkers)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.proc.Process(gctx, path, Collection(pdfRoot, path), SourceScan)
			if err != nil {
				return err
			}
			select {
			case results <- res:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	waitErr := g.Wait()
	close(results)
	<-done

	out := &Outcome{Summary: summary, Interrupted: ctx.Err() != nil}
	if waitErr != nil && !out.Interrupted {
		return nil, fmt.Errorf("scan workers: %w", waitErr)
	}
	summary.Interrupted = out.Interrupted
	if out.Interrupted {
		r.log.Warn("scan interrupted, writing partial results",
			zap.Int("merged", len(details)), zap.Int("pdfs", len(paths)))
	}

	records := engine.Finalize()
	out.Records = records
	if r.cache != nil {
		r.cache.Save()
	}

	if err := r.writeCatalogs(records, summary); err != nil {
		return nil, err
	}

	reportsDir := config.ReportsPath(root)
	reports, err := report.WriteAll(reportsDir, records, paths)
	if err != nil {
		r.log.Warn("writing reports failed", zap.Error(err))
	} else {
		for name, p := range reports {
			summary.Reports[name] = p
		}
	}
	detailPath := report.DetailPath(reportsDir, tag)
	if err := report.WriteDetails(detailPath, details); err != nil {
		r.log.Warn("writing scan details failed", zap.Error(err))
	} else {
		summary.Reports["scan_details"] = detailPath
	}

	counters := engine.Counters()
	summary.Created = counters.Created
	summary.Updated = counters.Updated
	summary.Matched = counters.Matched

	summaryPath, err := report.Save(config.ScanRunsPath(root), summary)
	if err != nil {
		r.log.Warn("writing run summary failed", zap.Error(err))
	}
	out.SummaryPath = summaryPath

	r.log.Info("scan finished",
		zap.String("run_id", summary.RunID),
		zap.Int("processed", summary.ProcessedPDFs),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors),
		zap.Int("warnings", summary.Warnings),
		zap.Any("top_errors", report.TopCodes(summary.ErrorCounts, 3)),
		zap.Any("top_warnings", report.TopCodes(summary.WarningCounts, 3)),
	)
	return out, nil
}

// Ingest runs one file through the pipeline with source manual and writes
// the catalog and its exports.
func (r *Runner) Ingest(ctx context.Context, path, collection string) (report.Detail, error) {
	root := r.opts.LibraryRoot
	tag := report.Tag(r.now())
	summary := report.NewSummary(tag)

	existing, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		return report.Detail{}, err
	}

	res, err := r.proc.Process(ctx, path, collection, SourceManual)
	if err != nil {
		return report.Detail{}, err
	}

	engine := catalog.NewEngine(existing, tag)
	engine.SetClock(r.now)
	detail := r.merge(engine, res, summary)
	if detail.Action == report.ActionError {
		return detail, nil
	}

	records := engine.Finalize()
	if r.cache != nil {
		r.cache.Save()
	}
	if err := r.writeCatalogs(records, summary); err != nil {
		return report.Detail{}, err
	}
	r.log.Info("ingested", zap.String("path", path), zap.String("action", detail.Action),
		zap.String("primary_id", detail.PrimaryID))
	return detail, nil
}

// merge feeds one result into the engine and returns its detail entry.
func (r *Runner) merge(engine *catalog.Engine, res enrich.Result, summary *report.Summary) report.Detail {
	summary.Record(res.Warnings, res.Errors)
	detail := report.Detail{Path: res.Path, Warnings: res.Warnings, Errors: res.Errors}

	if len(res.Errors) > 0 || res.Record == nil {
		r.log.Warn("file failed", zap.String("path", res.Path), zap.Strings("errors", res.Errors))
		detail.Action = report.ActionError
		return detail
	}
	if len(res.Warnings) > 0 {
		r.log.Debug("file warnings", zap.String("path", res.Path), zap.Strings("warnings", res.Warnings))
	}

	pos, action := engine.Merge(*res.Record)
	detail.Action = string(action)
	detail.PrimaryID = engine.Record(pos).PrimaryID
	return detail
}

// writeCatalogs writes the master table, which must succeed, then the
// JSON and complete-catalog exports, whose failures are logged.
func (r *Runner) writeCatalogs(records []reference.Record, summary *report.Summary) error {
	root := r.opts.LibraryRoot

	master := config.MasterCSVPath(root)
	if err := storage.WriteCatalog(master, records); err != nil {
		return err
	}
	summary.Outputs["master_csv"] = master

	complete := catalog.CompleteCatalog(records)
	outputs := []struct {
		name  string
		path  string
		write func(string) error
	}{
		{"master_json", config.MasterJSONPath(root), func(p string) error { return storage.WriteCatalogJSON(p, records) }},
		{"complete_csv", config.CompleteCSVPath(root), func(p string) error { return storage.WriteRecordsCSV(p, complete) }},
		{"complete_json", config.CompleteJSONPath(root), func(p string) error { return storage.WriteCatalogJSON(p, complete) }},
	}
	for _, o := range outputs {
		if err := o.write(o.path); err != nil {
			r.log.Warn("export failed", zap.String("output", o.name), zap.Error(err))
			continue
		}
		summary.Outputs[o.name] = o.path
	}
	return nil
}

// IsCatalogError reports whether err came from reading or writing the
// master table.
func IsCatalogError(err error) bool {
	return errors.Is(err, storage.ErrCatalogRead) || errors.Is(err, storage.ErrCatalogWrite)
}
