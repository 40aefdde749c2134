package catalog

import (
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

// MergeInto merges cand into existing without overwriting anything existing
// already knows. Two columns are special: type may be upgraded from ""/
// unknown to a concrete type (and is forced to book when cand carries an
// ISBN), and last_seen_run is always set to runTag. It reports whether any
// column other than last_seen_run changed.
func MergeInto(existing, cand *reference.Record, runTag string) bool {
	changed := false
	for _, col := range reference.Columns {
		switch col {
		case "type", "last_seen_run":
			continue
		}
		if strings.TrimSpace(existing.Get(col)) != "" {
			continue
		}
		if v := cand.Get(col); strings.TrimSpace(v) != "" {
			existing.Set(col, v)
			changed = true
		}
	}

	if t := mergedType(existing.Type, cand); t != existing.Type {
		existing.Type = t
		changed = true
	}
	existing.LastSeenRun = runTag
	return changed
}

func mergedType(current reference.DocType, cand *reference.Record) reference.DocType {
	if strings.TrimSpace(cand.ISBN) != "" {
		return reference.TypeBook
	}
	if (current == "" || current == reference.TypeUnknown) && cand.Type.IsConcrete() {
		return cand.Type
	}
	if current == "" && cand.Type != "" {
		return cand.Type
	}
	return current
}
