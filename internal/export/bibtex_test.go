package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/motherload/internal/reference"
)

func TestToBibTeX_BasicArticle(t *testing.T) {
	rec := reference.Record{
		DOI:     "10.1234/test",
		Title:   "Test Paper Title",
		Authors: "Smith, John; Doe, Jane",
		Year:    "2026",
		Journal: "Nature",
		Volume:  "12",
		Issue:   "3",
		Pages:   "1-10",
		Type:    reference.TypeArticle,
	}

	got := ToBibTeX(rec, "Smith_2026")

	want := []string{
		"@article{Smith_2026,",
		`author = {Smith, John and Doe, Jane}`,
		`title = {Test Paper Title}`,
		`journal = {Nature}`,
		`year = {2026}`,
		`volume = {12}`,
		`number = {3}`,
		`pages = {1-10}`,
		`doi = {10.1234/test}`,
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("ToBibTeX() missing %q, got:\n%s", w, got)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_VenueFallback(t *testing.T) {
	rec := reference.Record{Title: "T", Venue: "ICML", Type: reference.TypeArticle}
	got := ToBibTeX(rec, "k")
	if !strings.Contains(got, `journal = {ICML}`) {
		t.Errorf("ToBibTeX() should use venue when journal is empty, got:\n%s", got)
	}
}

func TestEntryType(t *testing.T) {
	tests := []struct {
		typ  reference.DocType
		want string
	}{
		{reference.TypeArticle, "article"},
		{reference.TypeBook, "book"},
		{reference.TypeUnknown, "misc"},
		{"", "misc"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got := entryType(reference.Record{Type: tt.typ})
			if got != tt.want {
				t.Errorf("entryType(%q) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors string
		want    string
	}{
		{"empty", "", ""},
		{"single author", "Smith, John", "Smith, John"},
		{"semicolon list", "Smith, John; Doe, Jane", "Smith, John and Doe, Jane"},
		{"and list", "John Smith and Jane Doe", "Smith, John and Doe, Jane"},
		{"multi-word given names", "Mary Jane Watson", "Watson, Mary Jane"},
		{"only last name", "Corporation", "Corporation"},
		{"mixed", "Smith, John; WHO", "Smith, John and WHO"},
		{"blank segments", "Smith, John; ; Doe, Jane;", "Smith, John and Doe, Jane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAuthors(tt.authors)
			if got != tt.want {
				t.Errorf("formatAuthors(%q) = %q, want %q", tt.authors, got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"100% effective", `100\% effective`},
		{"A & B", `A \& B`},
		{"$100 price", `\$100 price`},
		{"section #1", `section \#1`},
		{"under_score", `under\_score`},
		{"{braces}", `\{braces\}`},
		{"test~tilde", `test\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
		{"A & B: $100 for {item} #1", `A \& B: \$100 for \{item\} \#1`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeLatex(tt.input)
			if got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToBibTeX_OptionalFields(t *testing.T) {
	rec := reference.Record{Title: "Minimal Paper", Authors: "B, A", Year: "2026"}

	got := ToBibTeX(rec, "B_2026")

	for _, field := range []string{"doi = ", "isbn = ", "journal = ", "volume = ", "number = ", "pages = ", "url = "} {
		if strings.Contains(got, field) {
			t.Errorf("ToBibTeX() should not include empty %q, got:\n%s", field, got)
		}
	}
	if !strings.HasPrefix(got, "@misc{B_2026,") {
		t.Errorf("ToBibTeX() untyped record should be @misc, got:\n%s", got)
	}
}

func TestToBibTeX_SpecialCharactersInTitle(t *testing.T) {
	rec := reference.Record{Title: "A Study of α & β: 100% Complete", Year: "2026"}

	got := ToBibTeX(rec, "k")

	if !strings.Contains(got, `title = {A Study of α \& β: 100\% Complete}`) {
		t.Errorf("ToBibTeX() should escape special chars in title, got:\n%s", got)
	}
}

func TestAssignCitekeys(t *testing.T) {
	recs := []reference.Record{
		{Authors: "Smith, John", Year: "2020"},
		{Authors: "John Smith", Year: "2020"},
		{Authors: "O'Brien, Pat", Year: "2021"},
		{Authors: "", Year: ""},
		{Authors: "Smith, Jane", Year: "2020"},
	}

	got := AssignCitekeys(recs)
	want := []string{"Smith_2020", "Smith_2020_2", "OBrien_2021", "Unknown_0000", "Smith_2020_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssignCitekeys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestToBibTeXList(t *testing.T) {
	recs := []reference.Record{
		{Title: "First Paper", Authors: "B, A", Year: "2026", Type: reference.TypeArticle},
		{Title: "Second Paper", Authors: "B, C", Year: "2026", Type: reference.TypeBook, ISBN: "9780306406157"},
	}

	got := ToBibTeXList(recs)

	if !strings.Contains(got, "@article{B_2026,") {
		t.Errorf("ToBibTeXList() should contain first entry, got:\n%s", got)
	}
	if !strings.Contains(got, "@book{B_2026_2,") {
		t.Errorf("ToBibTeXList() should contain second entry, got:\n%s", got)
	}
	if !strings.Contains(got, "isbn = {9780306406157}") {
		t.Errorf("ToBibTeXList() should carry the ISBN, got:\n%s", got)
	}
}

func TestToBibTeXList_Empty(t *testing.T) {
	got := ToBibTeXList(nil)
	if got != "" {
		t.Errorf("ToBibTeXList(nil) should return empty string, got: %q", got)
	}
}

func TestWriteBibTeX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "catalog.bib")
	recs := []reference.Record{{Title: "Paper", Authors: "Doe, J", Year: "2020"}}

	if err := WriteBibTeX(path, recs); err != nil {
		t.Fatalf("WriteBibTeX() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "@misc{Doe_2020,") {
		t.Errorf("unexpected file content:\n%s", data)
	}
}

func TestParseBibTeXFile_Missing(t *testing.T) {
	idx, err := ParseBibTeXFile(filepath.Join(t.TempDir(), "none.bib"))
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}
	if len(idx.Keys) != 0 || len(idx.DOIs) != 0 {
		t.Errorf("expected empty index, got %+v", idx)
	}
}

func TestAppendNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	existing := "@article{Smith_2020,\n  doi = {https://doi.org/10.1/ABC},\n}\n"
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	recs := []reference.Record{
		{Title: "Known by DOI", Authors: "Other, A", Year: "1999", DOI: "10.1/abc"},
		{Title: "Known by key", Authors: "Smith, J", Year: "2020"},
		{Title: "New", Authors: "Doe, J", Year: "2021"},
	}
	n, err := AppendNew(path, recs)
	if err != nil {
		t.Fatalf("AppendNew() error = %v", err)
	}
	if n != 1 {
		t.Errorf("AppendNew() = %d, want 1", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "@misc{Doe_2021,") {
		t.Errorf("new entry not appended:\n%s", data)
	}
	if strings.Count(string(data), "@") != 2 {
		t.Errorf("expected 2 entries, got:\n%s", data)
	}

	n, err = AppendNew(path, recs)
	if err != nil || n != 0 {
		t.Errorf("second AppendNew() = %d, %v; want 0, nil", n, err)
	}
}
