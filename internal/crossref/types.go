// Package crossref is a client for the Crossref REST API, the primary
// metadata provider.
package crossref

import (
	"encoding/json"
	"strings"

	"github.com/matsen/motherload/internal/provider"
)

// Work is the subset of a Crossref work record that the catalog uses.
type Work struct {
	DOI             string    `json:"DOI"`
	Title           []string  `json:"title"`
	Author          []Author  `json:"author"`
	Issued          DateParts `json:"issued"`
	PublishedPrint  DateParts `json:"published-print"`
	PublishedOnline DateParts `json:"published-online"`
	Created         DateParts `json:"created"`
	ContainerTitle  []string  `json:"container-title"`
	Volume          string    `json:"volume"`
	Issue           string    `json:"issue"`
	Page            string    `json:"page"`
	URL             string    `json:"URL"`
}

// Author is a Crossref contributor.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// DateParts is Crossref's [[year, month, day]] date encoding. Parts may be
// null.
type DateParts struct {
	Parts [][]json.Number `json:"date-parts"`
}

// Year returns the first date part, or "".
func (d DateParts) Year() string {
	if len(d.Parts) == 0 || len(d.Parts[0]) == 0 {
		return ""
	}
	return d.Parts[0][0].String()
}

type workResponse struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

type searchResponse struct {
	Status  string `json:"status"`
	Message struct {
		Items []Work `json:"items"`
	} `json:"message"`
}

// FormatAuthors renders contributors as "Family, Given; ...". A contributor
// with only one name part is written as that part alone.
func FormatAuthors(authors []Author) string {
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		family := strings.TrimSpace(a.Family)
		given := strings.TrimSpace(a.Given)
		switch {
		case family != "" && given != "":
			parts = append(parts, family+", "+given)
		case family != "":
			parts = append(parts, family)
		case given != "":
			parts = append(parts, given)
		}
	}
	return strings.Join(parts, "; ")
}

// PublicationYear returns the year from the first populated of issued,
// published-print, published-online and created.
func (w Work) PublicationYear() string {
	for _, d := range []DateParts{w.Issued, w.PublishedPrint, w.PublishedOnline, w.Created} {
		if y := d.Year(); y != "" {
			return y
		}
	}
	return ""
}

// Fields maps a work looked up by DOI to catalog fields.
func (w Work) Fields() provider.Fields {
	f := w.searchFields()
	delete(f, provider.FieldDOI)
	if len(w.ContainerTitle) > 0 {
		f.Set(provider.FieldJournal, w.ContainerTitle[0])
	}
	f.Set(provider.FieldVolume, w.Volume)
	f.Set(provider.FieldIssue, w.Issue)
	f.Set(provider.FieldPages, w.Page)
	f.Set(provider.FieldURL, w.URL)
	return f
}

// searchFields maps a title-search hit. Only identity fields are taken from
// a search hit; the DOI lookup that follows supplies the rest.
func (w Work) searchFields() provider.Fields {
	f := provider.Fields{}
	f.Set(provider.FieldDOI, strings.ToLower(w.DOI))
	if len(w.Title) > 0 {
		f.Set(provider.FieldTitle, w.Title[0])
	}
	f.Set(provider.FieldAuthors, FormatAuthors(w.Author))
	f.Set(provider.FieldYear, w.PublicationYear())
	return f
}
