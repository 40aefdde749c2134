// Package catalog owns the master table during a run: it matches candidate
// records against the identity indexes, merges or appends them, and runs
// the post-merge passes (identity back-fill and preprint resolution).
//
// An Engine is not safe for concurrent use. Feed it from a single goroutine.
package catalog

import (
	"time"

	"github.com/matsen/motherload/internal/identity"
	"github.com/matsen/motherload/internal/reference"
)

// Action is what Merge did with a candidate.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Counters tallies merge outcomes. Every match counts as both matched and
// updated.
type Counters struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Matched int `json:"matched"`
}

// Engine is the single writer of the master table.
type Engine struct {
	records  []reference.Record
	index    *identity.Index
	runTag   string
	counters Counters
	now      func() time.Time
}

// NewEngine takes ownership of records and indexes them.
func NewEngine(records []reference.Record, runTag string) *Engine {
	return &Engine{
		records: records,
		index:   identity.NewIndex(records),
		runTag:  runTag,
		now:     time.Now,
	}
}

// SetClock overrides the clock used to stamp added_at on new rows.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Merge upserts cand and returns the row position it landed on.
func (e *Engine) Merge(cand reference.Record) (int, Action) {
	identity.Resolve(&cand)

	if pos, ok := e.index.Match(&cand); ok {
		MergeInto(&e.records[pos], &cand, e.runTag)
		e.index.Add(&e.records[pos], pos)
		e.counters.Matched++
		e.counters.Updated++
		return pos, ActionUpdated
	}

	if cand.Type == "" {
		cand.Type = reference.ClassifyType(cand.ISBN, cand.DOI)
	}
	if cand.AddedAt == "" {
		cand.AddedAt = e.now().UTC().Format(time.RFC3339)
	}
	cand.LastSeenRun = e.runTag

	pos := len(e.records)
	e.records = append(e.records, cand)
	e.index.Add(&e.records[pos], pos)
	e.counters.Created++
	return pos, ActionCreated
}

// Finalize runs the identity back-fill and the version resolver over the
// whole table and returns it.
func (e *Engine) Finalize() []reference.Record {
	Backfill(e.records)
	ResolveVersions(e.records)
	return e.records
}

// Records returns the table. The slice is owned by the engine.
func (e *Engine) Records() []reference.Record {
	return e.records
}

// Record returns the row at pos.
func (e *Engine) Record(pos int) reference.Record {
	return e.records[pos]
}

// Counters returns the merge tallies so far.
func (e *Engine) Counters() Counters {
	return e.counters
}

// Backfill computes fingerprint and primary_id for every row missing them.
func Backfill(records []reference.Record) {
	for i := range records {
		identity.Resolve(&records[i])
	}
}
