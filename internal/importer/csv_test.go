package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/reference"
)

func TestParseCSV_SubsetOfColumns(t *testing.T) {
	input := "Title,DOI,Authors,Year\n" +
		"A Paper,10.1/abc,\"Smith, J\",2020\n" +
		",,,\n" +
		"Another,,\"Doe, J\",2021\n"

	recs, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ParseCSV() returned %d records, want 2", len(recs))
	}
	if recs[0].DOI != "10.1/abc" || recs[0].Title != "A Paper" {
		t.Errorf("first record = %+v", recs[0])
	}
	for i, r := range recs {
		if r.Source != SourceCSV {
			t.Errorf("record %d Source = %q, want csv", i, r.Source)
		}
	}
}

func TestParseCSV_OverridesSourceColumn(t *testing.T) {
	recs, err := ParseCSV(strings.NewReader("title,source\nX,scan\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if recs[0].Source != SourceCSV {
		t.Errorf("Source = %q, want csv", recs[0].Source)
	}
}

func TestReadCSVFile_Missing(t *testing.T) {
	if _, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("ReadCSVFile() expected error for missing file")
	}
}

func TestReadPaperpileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	data := `[{"_id": "1", "title": "Paper", "published": {"year": 2020}, "author": [{"last": "A", "first": "B"}]}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	recs, errs := ReadPaperpileFile(path)
	if len(errs) > 0 || len(recs) != 1 {
		t.Fatalf("ReadPaperpileFile() = %d records, errors %v", len(recs), errs)
	}
}

func TestApply_MergesThroughEngine(t *testing.T) {
	existing := []reference.Record{{
		DOI: "10.1/abc", PrimaryID: "doi:10.1/abc", Title: "A Paper", Source: "scan",
	}}
	e := catalog.NewEngine(existing, "20240101_000000")

	imported := []reference.Record{
		{DOI: "10.1/ABC", Journal: "J. Tests", Source: SourceCSV},
		{Title: "Brand New", Authors: "Doe, J", Year: "2021", Source: SourceCSV},
	}
	got := Apply(e, imported)

	if got.Created != 1 || got.Matched != 1 {
		t.Errorf("Apply() counters = %+v, want 1 created, 1 matched", got)
	}
	recs := e.Records()
	if len(recs) != 2 {
		t.Fatalf("engine holds %d records, want 2", len(recs))
	}
	if recs[0].Journal != "J. Tests" {
		t.Errorf("matched row Journal = %q, want filled from import", recs[0].Journal)
	}
	if recs[0].Source != "scan" {
		t.Errorf("matched row Source = %q, want original kept", recs[0].Source)
	}
}
