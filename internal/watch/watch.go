// Package watch ingests PDFs dropped into a directory tree once they stop
// changing.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before ingest.
const DefaultDebounce = 2 * time.Second

// IngestFunc handles one settled PDF.
type IngestFunc func(ctx context.Context, path string) error

// Watcher watches root and its subdirectories.
type Watcher struct {
	root     string
	ingest   IngestFunc
	debounce time.Duration
	log      *zap.Logger
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a Watcher.
func New(root string, ingest IngestFunc, log *zap.Logger, opts ...Option) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		root:     root,
		ingest:   ingest,
		debounce: DefaultDebounce,
		log:      log,
		ready:    make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Ready is closed once the initial directory tree is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// dirAdder is the part of *fsnotify.Watcher that registers directories.
type dirAdder interface {
	Add(name string) error
}

type settled struct {
	path string
	gen  int
}

// Run blocks until ctx is done. Ingest calls are serialized on the Run
// goroutine; an ingest error is logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	close(w.ready)
	w.log.Info("watching", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	return w.loop(ctx, fw, fw.Events, fw.Errors)
}

// loop handles events until ctx is done or the event channels close.
// Debounce callbacks still pending when it returns give up instead of
// waiting for a receiver.
func (w *Watcher) loop(ctx context.Context, dirs dirAdder, events <-chan fsnotify.Event, errs <-chan error) error {
	done := make(chan struct{})
	defer close(done)

	pending := make(map[string]int)
	timers := make(map[string]*time.Timer)
	fired := make(chan settled)
	gen := 0

	schedule := func(path string) {
		gen++
		pending[path] = gen
		s := settled{path: path, gen: gen}
		if t, ok := timers[path]; ok {
			t.Stop()
		}
		timers[path] = time.AfterFunc(w.debounce, func() {
			select {
			case fired <- s:
			case <-done:
			case <-ctx.Done():
			}
		})
	}
	cancel := func(path string) {
		if t, ok := timers[path]; ok {
			t.Stop()
			delete(timers, path)
		}
		delete(pending, path)
	}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch {
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				info, err := os.Stat(ev.Name)
				if err != nil {
					continue
				}
				if info.IsDir() {
					if ev.Has(fsnotify.Create) {
						for _, p := range w.newTree(dirs, ev.Name) {
							schedule(p)
						}
					}
					continue
				}
				if isPDF(ev.Name) {
					schedule(ev.Name)
				}
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				cancel(ev.Name)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case s := <-fired:
			if pending[s.path] != s.gen {
				continue
			}
			delete(pending, s.path)
			delete(timers, s.path)
			if _, err := os.Stat(s.path); err != nil {
				continue
			}
			if err := w.ingest(ctx, s.path); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Warn("ingest failed", zap.String("path", s.path), zap.Error(err))
			}
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fw dirAdder, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// newTree watches a directory that appeared after startup and returns the
// PDFs already inside it, which produced no events of their own.
func (w *Watcher) newTree(fw dirAdder, dir string) []string {
	if err := w.addTree(fw, dir); err != nil {
		w.log.Warn("watching new directory failed", zap.String("dir", dir), zap.Error(err))
	}
	var pdfs []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && isPDF(path) {
			pdfs = append(pdfs, path)
		}
		return nil
	})
	return pdfs
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf") && !strings.HasPrefix(filepath.Base(path), ".")
}
