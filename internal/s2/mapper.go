package s2

import (
	"strconv"
	"strings"

	"github.com/matsen/motherload/internal/provider"
)

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"v":    true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// MapPaper converts an S2Paper to catalog fields. The DOI is only included
// when includeDOI is set, which is the case for search hits.
func MapPaper(paper S2Paper, includeDOI bool) provider.Fields {
	f := provider.Fields{}
	if includeDOI {
		f.Set(provider.FieldDOI, strings.ToLower(paper.ExternalIDs.DOI))
	}
	f.Set(provider.FieldTitle, paper.Title)
	if paper.Year > 0 {
		f.Set(provider.FieldYear, strconv.Itoa(paper.Year))
	}
	f.Set(provider.FieldAuthors, FormatAuthors(paper.Authors))
	f.Set(provider.FieldVenue, paper.Venue)
	if paper.Journal != nil {
		f.Set(provider.FieldJournal, paper.Journal.Name)
		f.Set(provider.FieldVolume, paper.Journal.Volume)
		f.Set(provider.FieldPages, paper.Journal.Pages)
	}
	return f
}

// FormatAuthors renders authors as "Last, First; ..." so that surnames
// line up with the Crossref rendering.
func FormatAuthors(authors []S2Author) string {
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		first, last := splitAuthorName(a.Name)
		switch {
		case last != "" && first != "":
			parts = append(parts, last+", "+first)
		case last != "":
			parts = append(parts, last)
		}
	}
	return strings.Join(parts, "; ")
}

// splitAuthorName splits a full name into first and last name.
// Handles common suffixes (Jr, Sr, II, III, IV, PhD, MD).
//
// Known limitations:
// - Multi-part surnames (von Neumann, van der Waals) split incorrectly
// - Non-Western name formats may not be handled correctly
// - Middle names are included in the first name
func splitAuthorName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		// Single name (e.g., "Madonna")
		return "", parts[0]
	}

	lastPart := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[lastPart] && len(parts) > 2 {
		last = parts[len(parts)-2] + " " + parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-2], " ")
	} else {
		last = parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-1], " ")
	}

	return first, last
}
