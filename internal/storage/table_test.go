package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/motherload/internal/reference"
)

func TestReadCatalog_NonExistentFile(t *testing.T) {
	records, err := ReadCatalog("/nonexistent/path/master_catalog.csv")
	if err != nil {
		t.Fatalf("ReadCatalog() error = %v (should return nil for nonexistent file)", err)
	}
	if len(records) != 0 {
		t.Errorf("ReadCatalog() returned %d records, want 0", len(records))
	}
}

func TestReadCatalog_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	if err := os.WriteFile(path, []byte(strings.Join(reference.Columns, ",")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	records, err := ReadCatalog(path)
	if err != nil {
		t.Fatalf("ReadCatalog() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ReadCatalog() returned %d records, want 0", len(records))
	}
}

func TestReadCatalog_LooseHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	content := "\ufeffDOI, Title ,notes,Type\n10.1/x,A Paper,ignored,article\n,,,\n,Book Only\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadCatalog(path)
	if err != nil {
		t.Fatalf("ReadCatalog() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ReadCatalog() returned %d records, want 2", len(records))
	}
	if records[0].DOI != "10.1/x" || records[0].Title != "A Paper" || records[0].Type != reference.TypeArticle {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Title != "Book Only" {
		t.Errorf("records[1].Title = %q", records[1].Title)
	}
}

func TestReadCatalog_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	if err := os.WriteFile(path, []byte("doi,title\n\"unterminated,x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadCatalog(path)
	if !errors.Is(err, ErrCatalogRead) {
		t.Errorf("ReadCatalog() error = %v, want ErrCatalogRead", err)
	}
}

func TestWriteCatalog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "master.csv")
	in := []reference.Record{
		{
			DOI: "10.1/x", Title: "Commas, and \"quotes\"", Authors: "Smith, J; Doe, A",
			Year: "2020", Type: reference.TypeArticle, Version: reference.VersionFinal,
			PrimaryID: "doi:10.1/x", Fingerprint: "commas and quotes|smith|2020",
			PDFPath: "/lib/pdfs/a.pdf", LastSeenRun: "20240101_000000",
		},
		{FileHash: "abc", PrimaryID: "hash:abc", ReplacedBy: "doi:10.1/x"},
	}

	if err := WriteCatalog(path, in); err != nil {
		t.Fatalf("WriteCatalog() error = %v", err)
	}
	out, err := ReadCatalog(path)
	if err != nil {
		t.Fatalf("ReadCatalog() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("record %d:\n got %+v\nwant %+v", i, out[i], in[i])
		}
	}

	data, _ := os.ReadFile(path)
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	if firstLine != strings.Join(reference.Columns, ",") {
		t.Errorf("header = %q", firstLine)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".master.csv.tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWriteCatalog_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	err := WriteCatalog(filepath.Join(blocker, "master.csv"), nil)
	if !errors.Is(err, ErrCatalogWrite) {
		t.Errorf("WriteCatalog() error = %v, want ErrCatalogWrite", err)
	}
}

func TestRecordsJSON(t *testing.T) {
	rows := RecordsJSON([]reference.Record{{DOI: "10.1/x", Type: reference.TypeBook}})
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if len(rows[0]) != len(reference.Columns) {
		t.Errorf("row has %d keys, want %d", len(rows[0]), len(reference.Columns))
	}
	if rows[0]["doi"] != "10.1/x" || rows[0]["type"] != "book" || rows[0]["title"] != "" {
		t.Errorf("row = %v", rows[0])
	}
}
