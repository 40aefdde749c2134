package catalog

import (
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

func filled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// IsComplete reports whether a record carries enough metadata to cite.
// Books need title, authors, year and an ISBN or URL. Articles need title,
// authors, year and either a DOI or a full journal/volume/issue/pages
// reference (journal or venue). Anything else is incomplete.
func IsComplete(r *reference.Record) bool {
	if !filled(r.Title, r.Authors, r.Year) {
		return false
	}
	switch r.Type {
	case reference.TypeBook:
		return filled(r.ISBN) || filled(r.URL)
	case reference.TypeArticle:
		if filled(r.DOI) {
			return true
		}
		container := r.Journal
		if strings.TrimSpace(container) == "" {
			container = r.Venue
		}
		return filled(container, r.Volume, r.Issue, r.Pages)
	default:
		return false
	}
}

// CompleteCatalog returns the rows that are not replaced, have a PDF and
// are complete.
func CompleteCatalog(records []reference.Record) []reference.Record {
	var out []reference.Record
	for i := range records {
		r := &records[i]
		if strings.TrimSpace(r.ReplacedBy) != "" || !r.HasPDF() || !IsComplete(r) {
			continue
		}
		out = append(out, *r)
	}
	return out
}
