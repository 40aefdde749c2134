package main

import (
	"os"
	"testing"
	"time"

	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

func TestImportRecords(t *testing.T) {
	root := t.TempDir()
	if _, err := config.Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := []reference.Record{
		{DOI: "10.1234/ABC", Title: "Paper One", Source: "csv"},
		{Title: "Paper Two", Authors: "Smith, Jane", Year: "2020", Source: "csv"},
	}
	counters, total, err := importRecords(root, first, now)
	if err != nil {
		t.Fatalf("importRecords: %v", err)
	}
	if counters.Created != 2 || total != 2 {
		t.Errorf("first import: created=%d total=%d, want 2 and 2", counters.Created, total)
	}

	second := []reference.Record{
		{DOI: "https://doi.org/10.1234/abc", Journal: "Nature", Source: "csv"},
	}
	counters, total, err = importRecords(root, second, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("importRecords: %v", err)
	}
	if counters.Created != 0 || counters.Updated != 1 || total != 2 {
		t.Errorf("second import: %+v total=%d, want one update and 2 rows", counters, total)
	}

	table, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if table[0].PrimaryID != "doi:10.1234/abc" {
		t.Errorf("PrimaryID = %q, want doi:10.1234/abc", table[0].PrimaryID)
	}
	if table[0].Journal != "Nature" {
		t.Errorf("Journal = %q, want filled from second import", table[0].Journal)
	}
	if table[0].LastSeenRun != "20240301_130000" {
		t.Errorf("LastSeenRun = %q, want 20240301_130000", table[0].LastSeenRun)
	}
	if _, err := os.Stat(config.MasterJSONPath(root)); err != nil {
		t.Errorf("JSON export missing: %v", err)
	}
}

func TestImportRecordsUnreadableCatalog(t *testing.T) {
	root := t.TempDir()
	if _, err := config.Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.MkdirAll(config.MasterCSVPath(root), 0755); err != nil {
		t.Fatal(err)
	}
	_, _, err := importRecords(root, []reference.Record{{Title: "x"}}, time.Now())
	if err == nil {
		t.Fatal("expected error for unreadable master table")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"pdf-root":    "pdf_root",
		"PDF_ROOT":    "pdf_root",
		"max_workers": "max_workers",
		"Max-Workers": "max_workers",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateString("a much longer title", 10); got != "a much ..." {
		t.Errorf("got %q, want %q", got, "a much ...")
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	tests := []struct {
		authors string
		max     int
		want    string
	}{
		{"Smith, J", 3, "Smith, J"},
		{"A, a; B, b; C, c", 3, "A, a; B, b; C, c"},
		{"A, a; B, b; C, c; D, d", 2, "A, a; B, b; et al."},
		{" ; Smith, J ;", 3, "Smith, J"},
	}
	for _, tt := range tests {
		if got := formatAuthorsShort(tt.authors, tt.max); got != tt.want {
			t.Errorf("formatAuthorsShort(%q, %d) = %q, want %q", tt.authors, tt.max, got, tt.want)
		}
	}
}
