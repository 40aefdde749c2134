package report

import (
	"path/filepath"

	"github.com/matsen/motherload/internal/storage"
)

// Per-file actions in the detail report.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionError   = "error"
)

// Detail is one line of scan_details_<tag>.jsonl.
type Detail struct {
	Path      string   `json:"path"`
	Action    string   `json:"action"`
	PrimaryID string   `json:"primary_id,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// DetailPath is where the detail report of run tag lives inside dir.
func DetailPath(dir, tag string) string {
	return filepath.Join(dir, "scan_details_"+tag+".jsonl")
}

// WriteDetails writes the per-file detail report.
func WriteDetails(path string, details []Detail) error {
	return storage.WriteJSONL(path, details)
}
