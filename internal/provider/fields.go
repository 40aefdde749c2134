// Package provider holds the pieces shared by the bibliographic metadata
// providers: the flat field map they return, the cache kinds they use, and
// the rate-limited JSON transport.
package provider

import "strings"

// Field names a provider may fill.
const (
	FieldDOI     = "doi"
	FieldTitle   = "title"
	FieldAuthors = "authors"
	FieldYear    = "year"
	FieldJournal = "journal"
	FieldVenue   = "venue"
	FieldVolume  = "volume"
	FieldIssue   = "issue"
	FieldPages   = "pages"
	FieldURL     = "url"
)

// Kind identifies a provider endpoint for caching.
type Kind string

const (
	KindCrossref       Kind = "crossref"
	KindSemantic       Kind = "semantic"
	KindCrossrefSearch Kind = "crossref_search"
	KindSemanticSearch Kind = "semantic_search"
)

// Fields is a flat field → value map. Blank values are never stored.
type Fields map[string]string

// Set stores value under name after trimming; blank values are dropped.
func (f Fields) Set(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	f[name] = value
}

// Get returns the value for name, or "".
func (f Fields) Get(name string) string {
	return f[name]
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return len(f) == 0
}

// FillFrom copies every non-empty field of other that f does not already
// have. Earlier sources therefore win.
func (f Fields) FillFrom(other Fields) {
	for k, v := range other {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if f[k] == "" {
			f[k] = v
		}
	}
}

// SearchKey builds the cache key used for title searches.
func SearchKey(title, authors, year string) string {
	return title + "|" + authors + "|" + year
}
