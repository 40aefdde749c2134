package storage

import (
	"path/filepath"
	"testing"

	"github.com/matsen/motherload/internal/reference"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	records := []reference.Record{
		{
			DOI: "10.1234/smith", Title: "Machine Learning in Biology", Authors: "Smith, John; Doe, Jane",
			Year: "2026", Journal: "Nature", Type: reference.TypeArticle, Collection: "bio/ml",
			PrimaryID: "doi:10.1234/smith",
		},
		{
			Title: "Deep Learning for Protein Structure", Authors: "Jones, Alice",
			Year: "2025", Venue: "NeurIPS", Type: reference.TypeArticle, Collection: "bio",
			PrimaryID: "fp:deep learning for protein structure|jones|2025",
		},
		{
			ISBN: "9780306406157", Title: "Statistical Methods in Genomics", Authors: "Brown, Bob",
			Year: "2024", Type: reference.TypeBook, Collection: "stats",
			PrimaryID: "isbn:9780306406157",
		},
	}

	db, err := OpenDB(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.RebuildFromRecords(records)
	if err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	if n != 3 {
		t.Fatalf("RebuildFromRecords() = %d, want 3", n)
	}
	return db
}

func TestRebuildReplacesContent(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.RebuildFromRecords([]reference.Record{{Title: "Only One"}}); err != nil {
		t.Fatalf("RebuildFromRecords() error = %v", err)
	}
	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	got, _ := db.Search("learning", 10)
	if len(got) != 0 {
		t.Errorf("stale FTS rows: %d", len(got))
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		query string
		want  int
	}{
		{"learning", 2},
		{"genomics", 1},
		{"nature", 1},
		{"neurips", 1},
		{"quantum", 0},
		{"10.1234/smith", 0},
	}
	for _, tt := range tests {
		got, err := db.Search(tt.query, 10)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q) returned %d records, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestSearchReturnsFullRecords(t *testing.T) {
	db := setupTestDB(t)
	got, err := db.Search("genomics", 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("Search() = %v, %v", got, err)
	}
	r := got[0]
	if r.ISBN != "9780306406157" || r.Type != reference.TypeBook || r.PrimaryID != "isbn:9780306406157" {
		t.Errorf("record = %+v", r)
	}
}

func TestSearchWithFilters(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name    string
		filters SearchFilters
		want    int
	}{
		{"author prefix", SearchFilters{Authors: []string{"Jon"}}, 1},
		{"title", SearchFilters{Title: "protein"}, 1},
		{"type book", SearchFilters{Type: "book"}, 1},
		{"year from", SearchFilters{YearFrom: 2025}, 2},
		{"year range", SearchFilters{YearFrom: 2024, YearTo: 2024}, 1},
		{"collection prefix", SearchFilters{Collection: "bio"}, 2},
		{"collection exact", SearchFilters{Collection: "bio/ml"}, 1},
		{"incomplete", SearchFilters{IncompleteOnly: true}, 1},
		{"keyword and type", SearchFilters{Keyword: "learning", Type: "book"}, 0},
		{"no filters", SearchFilters{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.SearchWithFilters(tt.filters, 0)
			if err != nil {
				t.Fatalf("SearchWithFilters() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchWithFilters() returned %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple words", "simple words"},
		{"  ", ""},
		{`has "quote"`, `"has ""quote"""`},
		{"10.1/x", `"10.1/x"`},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
