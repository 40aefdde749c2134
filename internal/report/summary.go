package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/matsen/motherload/internal/storage"
)

// TagLayout formats run tags.
const TagLayout = "20060102_150405"

// LatestKeep is how many runs latest.json remembers.
const LatestKeep = 2

// Tag returns the run tag for t.
func Tag(t time.Time) string {
	return t.Format(TagLayout)
}

// Summary is the persisted record of one run.
type Summary struct {
	RunID         string            `json:"run_id"`
	Timestamp     string            `json:"timestamp"`
	TotalPDFs     int               `json:"total_pdfs"`
	ProcessedPDFs int               `json:"processed_pdfs"`
	Created       int               `json:"created"`
	Updated       int               `json:"updated"`
	Matched       int               `json:"matched"`
	Errors        int               `json:"errors"`
	Warnings      int               `json:"warnings"`
	ErrorCounts   map[string]int    `json:"error_counts"`
	WarningCounts map[string]int    `json:"warning_counts"`
	Reports       map[string]string `json:"reports"`
	Outputs       map[string]string `json:"outputs"`
	Interrupted   bool              `json:"interrupted,omitempty"`
}

// NewSummary starts a summary for the run tagged tag.
func NewSummary(tag string) *Summary {
	return &Summary{
		RunID:         ulid.Make().String(),
		Timestamp:     tag,
		ErrorCounts:   make(map[string]int),
		WarningCounts: make(map[string]int),
		Reports:       make(map[string]string),
		Outputs:       make(map[string]string),
	}
}

// Record counts one processed file and its codes.
func (s *Summary) Record(warnings, errors []string) {
	s.ProcessedPDFs++
	for _, w := range warnings {
		s.Warnings++
		s.WarningCounts[w]++
	}
	for _, e := range errors {
		s.Errors++
		s.ErrorCounts[e]++
	}
}

// CodeCount is one histogram bar.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// TopCodes returns the n most frequent codes, ties broken by code.
func TopCodes(counts map[string]int, n int) []CodeCount {
	out := make([]CodeCount, 0, len(counts))
	for code, c := range counts {
		out = append(out, CodeCount{Code: code, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LatestRun points at one saved summary.
type LatestRun struct {
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
	Path      string `json:"path"`
}

// Latest is the rolling pointer file.
type Latest struct {
	Runs []LatestRun `json:"runs"`
}

// LoadLatest reads dir/latest.json. A missing or unreadable file is empty.
func LoadLatest(dir string) Latest {
	var latest Latest
	data, err := os.ReadFile(filepath.Join(dir, "latest.json"))
	if err != nil {
		return Latest{}
	}
	if err := json.Unmarshal(data, &latest); err != nil {
		return Latest{}
	}
	return latest
}

// Save writes the summary to dir/<tag>.json and pushes it onto
// dir/latest.json, which keeps the LatestKeep most recent runs.
func Save(dir string, s *Summary) (string, error) {
	path := filepath.Join(dir, s.Timestamp+".json")
	if err := storage.WriteJSON(path, s); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}

	latest := LoadLatest(dir)
	runs := []LatestRun{{Timestamp: s.Timestamp, RunID: s.RunID, Path: path}}
	for _, r := range latest.Runs {
		if r.Path == path {
			continue
		}
		runs = append(runs, r)
	}
	if len(runs) > LatestKeep {
		runs = runs[:LatestKeep]
	}
	if err := storage.WriteJSON(filepath.Join(dir, "latest.json"), Latest{Runs: runs}); err != nil {
		return "", fmt.Errorf("writing latest pointer: %w", err)
	}
	return path, nil
}

// LoadSummary reads a saved summary.
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary %s: %w", path, err)
	}
	return &s, nil
}
