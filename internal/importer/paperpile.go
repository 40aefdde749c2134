// Package importer converts external reference exports into catalog rows.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

// Import sources written to the source column.
const (
	SourcePaperpile = "paperpile"
	SourceCSV       = "csv"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	PubType   string         `json:"pubtype"`
	DOI       string         `json:"doi"`
	ISBN      string         `json:"isbn"`
	Title     string         `json:"title"`
	Journal   string         `json:"journal"`
	Volume    FlexibleString `json:"volume"`
	Issue     FlexibleString `json:"issue"`
	Pages     FlexibleString `json:"pages"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
	Attachments []struct {
		ArticlePDF int    `json:"article_pdf"` // 1 = main PDF, 0 = supplement
		Filename   string `json:"filename"`
	} `json:"attachments"`
}

// ParsePaperpile parses a Paperpile JSON export. Entries that cannot be
// converted are reported in the error slice; the rest are returned.
func ParsePaperpile(data []byte) ([]reference.Record, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var records []reference.Record
	var errs []error

	for i, entry := range entries {
		rec, err := paperpileEntryToRecord(entry)
		if err != nil {
			label := entry.Citekey
			if label == "" {
				label = entry.ID
			}
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, label, err))
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}

func paperpileEntryToRecord(entry PaperpileEntry) (reference.Record, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return reference.Record{}, fmt.Errorf("missing required field 'title'")
	}

	year := strings.TrimSpace(entry.Published.Year.String())
	if year != "" {
		if _, err := strconv.Atoi(year); err != nil {
			return reference.Record{}, fmt.Errorf("invalid year: %s", year)
		}
	}

	var pdfPath string
	for _, att := range entry.Attachments {
		if att.ArticlePDF == 1 {
			pdfPath = att.Filename
			break
		}
	}

	return reference.Record{
		DOI:     strings.TrimSpace(entry.DOI),
		ISBN:    strings.TrimSpace(entry.ISBN),
		Title:   strings.TrimSpace(entry.Title),
		Authors: formatPaperpileAuthors(entry),
		Year:    year,
		Journal: strings.TrimSpace(entry.Journal),
		Volume:  entry.Volume.String(),
		Issue:   entry.Issue.String(),
		Pages:   entry.Pages.String(),
		Type:    paperpileType(entry.PubType),
		PDFPath: pdfPath,
		Source:  SourcePaperpile,
	}, nil
}

// formatPaperpileAuthors joins authors as "Last, First; Last, First".
// Corporate authors carry only a last name.
func formatPaperpileAuthors(entry PaperpileEntry) string {
	parts := make([]string, 0, len(entry.Author))
	for _, a := range entry.Author {
		last := strings.TrimSpace(a.Last)
		first := strings.TrimSpace(a.First)
		switch {
		case last != "" && first != "":
			parts = append(parts, last+", "+first)
		case last != "":
			parts = append(parts, last)
		case first != "":
			parts = append(parts, first)
		}
	}
	return strings.Join(parts, "; ")
}

// paperpileType maps Paperpile publication types. Unknown types are left
// empty so the merge engine classifies them from the identifiers.
func paperpileType(pubtype string) reference.DocType {
	switch strings.ToUpper(strings.TrimSpace(pubtype)) {
	case "JOUR", "ARTICLE", "PREPRINT":
		return reference.TypeArticle
	case "BOOK", "CHAP":
		return reference.TypeBook
	default:
		return ""
	}
}
