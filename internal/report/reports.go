// Package report derives the quality reports and the run summary from the
// final master table.
package report

import (
	"path/filepath"
	"strings"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

// Report names, also used as file stems.
const (
	RefsWithoutPDF            = "refs_without_pdf"
	RefsIncomplete            = "refs_incomplete"
	PDFsWithoutRef            = "pdfs_without_ref"
	DuplicatesAndReplacements = "duplicates_and_replacements"
)

// Issue labels in the duplicates report.
const (
	IssueDuplicatePrimaryID = "duplicate_primary_id"
	IssueReplacedBy         = "replaced_by"
)

// Issue is one row of the duplicates-and-replacements report.
type Issue struct {
	Record reference.Record
	Issue  string
}

// WithoutPDF returns rows with neither a pdf_path nor a file_hash.
func WithoutPDF(records []reference.Record) []reference.Record {
	var out []reference.Record
	for i := range records {
		if !records[i].HasPDF() {
			out = append(out, records[i])
		}
	}
	return out
}

// Incomplete returns rows failing the completeness rules.
func Incomplete(records []reference.Record) []reference.Record {
	var out []reference.Record
	for i := range records {
		if !catalog.IsComplete(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// OrphanPDFs returns the paths in pdfPaths that no row references.
func OrphanPDFs(records []reference.Record, pdfPaths []string) []string {
	known := make(map[string]bool, len(records))
	for i := range records {
		if p := strings.TrimSpace(records[i].PDFPath); p != "" {
			known[p] = true
		}
	}
	var out []string
	for _, p := range pdfPaths {
		if !known[p] {
			out = append(out, p)
		}
	}
	return out
}

// Duplicates lists every row sharing its primary_id with another row, then
// every row with a replaced_by.
func Duplicates(records []reference.Record) []Issue {
	counts := make(map[string]int)
	for i := range records {
		if pid := strings.TrimSpace(records[i].PrimaryID); pid != "" {
			counts[pid]++
		}
	}

	var out []Issue
	for i := range records {
		if counts[strings.TrimSpace(records[i].PrimaryID)] > 1 {
			out = append(out, Issue{Record: records[i], Issue: IssueDuplicatePrimaryID})
		}
	}
	for i := range records {
		if strings.TrimSpace(records[i].ReplacedBy) != "" {
			out = append(out, Issue{Record: records[i], Issue: IssueReplacedBy})
		}
	}
	return out
}

// WriteAll writes the four reports into dir and returns name → path.
func WriteAll(dir string, records []reference.Record, pdfPaths []string) (map[string]string, error) {
	paths := map[string]string{
		RefsWithoutPDF:            filepath.Join(dir, RefsWithoutPDF+".csv"),
		RefsIncomplete:            filepath.Join(dir, RefsIncomplete+".csv"),
		PDFsWithoutRef:            filepath.Join(dir, PDFsWithoutRef+".csv"),
		DuplicatesAndReplacements: filepath.Join(dir, DuplicatesAndReplacements+".csv"),
	}

	if err := storage.WriteRecordsCSV(paths[RefsWithoutPDF], WithoutPDF(records)); err != nil {
		return nil, err
	}
	if err := storage.WriteRecordsCSV(paths[RefsIncomplete], Incomplete(records)); err != nil {
		return nil, err
	}

	orphans := OrphanPDFs(records, pdfPaths)
	rows := make([][]string, len(orphans))
	for i, p := range orphans {
		rows[i] = []string{p}
	}
	if err := storage.WriteCSV(paths[PDFsWithoutRef], []string{"pdf_path"}, rows); err != nil {
		return nil, err
	}

	issues := Duplicates(records)
	header := append(append([]string{}, reference.Columns...), "issue")
	rows = make([][]string, len(issues))
	for i := range issues {
		rows[i] = append(issues[i].Record.Values(), issues[i].Issue)
	}
	if err := storage.WriteCSV(paths[DuplicatesAndReplacements], header, rows); err != nil {
		return nil, err
	}

	return paths, nil
}
