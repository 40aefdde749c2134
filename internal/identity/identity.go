// Package identity derives stable catalog identities from weak signals:
// DOI, ISBN, a title/author/year fingerprint and a content hash.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownAuthor is returned by FirstAuthorLast when no author is available.
const UnknownAuthor = "Unknown"

// Normalize lowercases s, folds diacritics, strips punctuation and symbols,
// and collapses runs of whitespace. Letters and digits of every script are
// kept.
func Normalize(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.In(r, unicode.Mc):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FirstAuthorLast returns the surname of the first author. Authors are split
// on ";" or " and "; the surname is the part before a comma, or the last
// token when there is no comma.
func FirstAuthorLast(authors string) string {
	text := strings.TrimSpace(authors)
	if text == "" {
		return UnknownAuthor
	}

	first := text
	if i := strings.Index(text, ";"); i >= 0 {
		first = text[:i]
	} else if i := strings.Index(text, " and "); i >= 0 {
		first = text[:i]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownAuthor
	}

	if i := strings.Index(first, ","); i >= 0 {
		if last := strings.TrimSpace(first[:i]); last != "" {
			return last
		}
		return UnknownAuthor
	}

	parts := strings.Fields(first)
	if len(parts) == 0 {
		return UnknownAuthor
	}
	return parts[len(parts)-1]
}

// Fingerprint builds the heuristic identity key
// "normalized title|normalized first-author surname|normalized year".
// Distinct works sharing all three collide.
func Fingerprint(title, authors, year string) string {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(authors) == "" && strings.TrimSpace(year) == "" {
		return ""
	}
	return Normalize(title) + "|" + Normalize(FirstAuthorLast(authors)) + "|" + Normalize(year)
}

// PrimaryID picks the canonical identifier by fixed priority:
// DOI, then ISBN, then fingerprint, then file hash.
func PrimaryID(doi, isbn, fingerprint, fileHash string) string {
	if v := NormalizeDOI(doi); v != "" {
		return "doi:" + v
	}
	if v := NormalizeISBN(isbn); v != "" {
		return "isbn:" + v
	}
	if v := strings.TrimSpace(fingerprint); v != "" {
		return "fp:" + v
	}
	if v := strings.TrimSpace(fileHash); v != "" {
		return "hash:" + v
	}
	return ""
}

// NormalizeISBN drops hyphens and whitespace and uppercases the X check
// digit, so printed and bare forms of one ISBN compare equal.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	b.Grow(len(isbn))
	for _, r := range isbn {
		switch {
		case r == '-', unicode.IsSpace(r):
		case r == 'x':
			b.WriteByte('X')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeDOI trims and lowercases a DOI and removes resolver prefixes.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			lower = strings.TrimSpace(lower[len(prefix):])
			break
		}
	}
	return lower
}
