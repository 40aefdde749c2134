package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

func fixture() []reference.Record {
	return []reference.Record{
		{
			DOI: "10.1/a", PrimaryID: "doi:10.1/a", Title: "A", Authors: "Smith, J", Year: "2020",
			Type: reference.TypeArticle, PDFPath: "/lib/a.pdf", FileHash: "h1",
		},
		{
			PrimaryID: "fp:b", Title: "B", Type: reference.TypeArticle,
			Journal: "arXiv", ReplacedBy: "doi:10.1/a", PDFPath: "/lib/b.pdf",
		},
		{PrimaryID: "doi:10.1/a", Title: "A copy", Type: reference.TypeUnknown},
	}
}

func TestWithoutPDF(t *testing.T) {
	got := WithoutPDF(fixture())
	require.Len(t, got, 1)
	assert.Equal(t, "A copy", got[0].Title)
}

func TestIncomplete(t *testing.T) {
	got := Incomplete(fixture())
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Title)
	assert.Equal(t, "A copy", got[1].Title)
}

func TestOrphanPDFs(t *testing.T) {
	got := OrphanPDFs(fixture(), []string{"/lib/a.pdf", "/lib/c.pdf", "/lib/b.pdf"})
	assert.Equal(t, []string{"/lib/c.pdf"}, got)
}

func TestDuplicates(t *testing.T) {
	got := Duplicates(fixture())
	require.Len(t, got, 3)
	assert.Equal(t, IssueDuplicatePrimaryID, got[0].Issue)
	assert.Equal(t, "A", got[0].Record.Title)
	assert.Equal(t, IssueDuplicatePrimaryID, got[1].Issue)
	assert.Equal(t, "A copy", got[1].Record.Title)
	assert.Equal(t, IssueReplacedBy, got[2].Issue)
	assert.Equal(t, "B", got[2].Record.Title)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteAll(dir, fixture(), []string{"/lib/c.pdf"})
	require.NoError(t, err)
	require.Len(t, paths, 4)

	missing, err := storage.ReadCatalog(paths[RefsWithoutPDF])
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "A copy", missing[0].Title)

	data, err := os.ReadFile(paths[PDFsWithoutRef])
	require.NoError(t, err)
	assert.Equal(t, "pdf_path\n/lib/c.pdf\n", string(data))

	data, err = os.ReadFile(paths[DuplicatesAndReplacements])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], ",issue"))
	assert.True(t, strings.HasSuffix(lines[3], ","+IssueReplacedBy))
}

func TestWriteAllEmptyTable(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteAll(dir, nil, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(paths[RefsIncomplete])
	require.NoError(t, err)
	assert.Equal(t, strings.Join(reference.Columns, ",")+"\n", string(data))
}

func TestSummaryRecord(t *testing.T) {
	s := NewSummary("20240101_000000")
	assert.Len(t, s.RunID, 26)

	s.Record([]string{"DOI_NOT_FOUND", "MISSING_CORE"}, nil)
	s.Record([]string{"MISSING_CORE"}, []string{"PARSE_FAIL"})
	s.Record(nil, nil)

	assert.Equal(t, 3, s.ProcessedPDFs)
	assert.Equal(t, 3, s.Warnings)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 2, s.WarningCounts["MISSING_CORE"])
	assert.Equal(t, 1, s.ErrorCounts["PARSE_FAIL"])
}

func TestTopCodes(t *testing.T) {
	counts := map[string]int{"B": 2, "A": 2, "C": 5, "D": 1}
	got := TopCodes(counts, 3)
	assert.Equal(t, []CodeCount{{"C", 5}, {"A", 2}, {"B", 2}}, got)
	assert.Len(t, TopCodes(counts, 0), 4)
}

func TestSaveKeepsTwoLatest(t *testing.T) {
	dir := t.TempDir()
	for _, tag := range []string{"20240101_000000", "20240102_000000", "20240103_000000"} {
		_, err := Save(dir, NewSummary(tag))
		require.NoError(t, err)
	}

	latest := LoadLatest(dir)
	require.Len(t, latest.Runs, 2)
	assert.Equal(t, "20240103_000000", latest.Runs[0].Timestamp)
	assert.Equal(t, "20240102_000000", latest.Runs[1].Timestamp)

	s, err := LoadSummary(latest.Runs[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "20240103_000000", s.Timestamp)
	assert.Equal(t, latest.Runs[0].RunID, s.RunID)
}

func TestSaveRecoversCorruptLatest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.json"), []byte("{not json"), 0o644))

	path, err := Save(dir, NewSummary("20240101_000000"))
	require.NoError(t, err)

	latest := LoadLatest(dir)
	require.Len(t, latest.Runs, 1)
	assert.Equal(t, path, latest.Runs[0].Path)
}

func TestWriteDetails(t *testing.T) {
	dir := t.TempDir()
	path := DetailPath(dir, "20240101_000000")
	assert.Equal(t, filepath.Join(dir, "scan_details_20240101_000000.jsonl"), path)

	details := []Detail{
		{Path: "/lib/a.pdf", Action: ActionCreated, PrimaryID: "doi:10.1/a"},
		{Path: "/lib/bad.pdf", Action: ActionError, Errors: []string{"PARSE_FAIL"}},
	}
	require.NoError(t, WriteDetails(path, details))

	got, err := storage.ReadJSONL[Detail](path)
	require.NoError(t, err)
	assert.Equal(t, details, got)
}
