package catalog

import (
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

var preprintMarkers = []string{"arxiv", "biorxiv", "medrxiv", "preprint"}

// IsPreprint reports whether the record's journal, venue, DOI or URL names
// a preprint host.
func IsPreprint(r *reference.Record) bool {
	text := strings.ToLower(strings.Join([]string{r.Journal, r.Venue, r.DOI, r.URL}, " "))
	for _, m := range preprintMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// ResolveVersion classifies a record as preprint, final or neither.
func ResolveVersion(r *reference.Record) reference.Version {
	if IsPreprint(r) {
		return reference.VersionPreprint
	}
	if strings.TrimSpace(r.DOI) != "" {
		return reference.VersionFinal
	}
	return reference.VersionNone
}

// ResolveVersions recomputes every row's version, then within each
// fingerprint group holding both a final and a preprint row, points every
// preprint's replaced_by at the first final row's primary_id. Groups
// lacking either version are untouched, and replaced_by is never cleared.
func ResolveVersions(records []reference.Record) {
	var order []string
	groups := make(map[string][]int)
	for i := range records {
		records[i].Version = ResolveVersion(&records[i])
		fp := strings.TrimSpace(records[i].Fingerprint)
		if fp == "" {
			continue
		}
		if _, ok := groups[fp]; !ok {
			order = append(order, fp)
		}
		groups[fp] = append(groups[fp], i)
	}

	for _, fp := range order {
		final := -1
		var preprints []int
		for _, i := range groups[fp] {
			switch records[i].Version {
			case reference.VersionFinal:
				if final < 0 {
					final = i
				}
			case reference.VersionPreprint:
				preprints = append(preprints, i)
			}
		}
		if final < 0 || len(preprints) == 0 {
			continue
		}
		target := records[final].PrimaryID
		if target == "" {
			continue
		}
		for _, i := range preprints {
			records[i].ReplacedBy = target
		}
	}
}
