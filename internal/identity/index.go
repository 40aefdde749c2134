package identity

import (
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

// Index holds the four identity lookups over the master table. Each maps a
// key to a row position. The first row to claim a key keeps it.
type Index struct {
	byDOI         map[string]int
	byISBN        map[string]int
	byFingerprint map[string]int
	byHash        map[string]int
}

// NewIndex builds an Index over records.
func NewIndex(records []reference.Record) *Index {
	ix := &Index{
		byDOI:         make(map[string]int),
		byISBN:        make(map[string]int),
		byFingerprint: make(map[string]int),
		byHash:        make(map[string]int),
	}
	for i := range records {
		ix.Add(&records[i], i)
	}
	return ix
}

// Add registers every non-empty key of r at position pos, leaving keys that
// already point elsewhere untouched.
func (ix *Index) Add(r *reference.Record, pos int) {
	claim(ix.byDOI, NormalizeDOI(r.DOI), pos)
	claim(ix.byISBN, NormalizeISBN(r.ISBN), pos)
	claim(ix.byFingerprint, strings.TrimSpace(r.Fingerprint), pos)
	claim(ix.byHash, strings.TrimSpace(r.FileHash), pos)
}

func claim(m map[string]int, key string, pos int) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = pos
	}
}

// Match looks the candidate up by DOI, then ISBN, then fingerprint, then
// file hash, and returns the first hit.
func (ix *Index) Match(r *reference.Record) (int, bool) {
	if pos, ok := lookup(ix.byDOI, NormalizeDOI(r.DOI)); ok {
		return pos, true
	}
	if pos, ok := lookup(ix.byISBN, NormalizeISBN(r.ISBN)); ok {
		return pos, true
	}
	if pos, ok := lookup(ix.byFingerprint, strings.TrimSpace(r.Fingerprint)); ok {
		return pos, true
	}
	return lookup(ix.byHash, strings.TrimSpace(r.FileHash))
}

func lookup(m map[string]int, key string) (int, bool) {
	if key == "" {
		return -1, false
	}
	pos, ok := m[key]
	return pos, ok
}

// Resolve fills in Fingerprint and PrimaryID when they are empty.
func Resolve(r *reference.Record) {
	if strings.TrimSpace(r.Fingerprint) == "" {
		r.Fingerprint = Fingerprint(r.Title, r.Authors, r.Year)
	}
	if strings.TrimSpace(r.PrimaryID) == "" {
		r.PrimaryID = PrimaryID(r.DOI, r.ISBN, r.Fingerprint, r.FileHash)
	}
}
