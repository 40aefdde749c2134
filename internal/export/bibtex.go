// Package export renders catalog rows as BibTeX.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/motherload/internal/identity"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

// ToBibTeX converts a record to a BibTeX entry under key.
func ToBibTeX(rec reference.Record, key string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType(rec), key))

	container := strings.TrimSpace(rec.Journal)
	if container == "" {
		container = strings.TrimSpace(rec.Venue)
	}

	fields := []struct{ name, value string }{
		{"title", escapeLatex(strings.TrimSpace(rec.Title))},
		{"author", escapeLatex(formatAuthors(rec.Authors))},
		{"year", strings.TrimSpace(rec.Year)},
		{"doi", strings.TrimSpace(rec.DOI)},
		{"isbn", strings.TrimSpace(rec.ISBN)},
		{"journal", escapeLatex(container)},
		{"volume", strings.TrimSpace(rec.Volume)},
		{"number", strings.TrimSpace(rec.Issue)},
		{"pages", strings.TrimSpace(rec.Pages)},
		{"url", strings.TrimSpace(rec.URL)},
	}
	for _, f := range fields {
		if f.value != "" {
			b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.name, f.value))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts records to BibTeX with keys from AssignCitekeys.
func ToBibTeXList(records []reference.Record) string {
	keys := AssignCitekeys(records)
	entries := make([]string, len(records))
	for i := range records {
		entries[i] = ToBibTeX(records[i], keys[i])
	}
	return strings.Join(entries, "\n")
}

// WriteBibTeX writes the whole list to path.
func WriteBibTeX(path string, records []reference.Record) error {
	return storage.WriteFile(path, []byte(ToBibTeXList(records)))
}

// AssignCitekeys returns Surname_Year keys in row order. Repeats get _2, _3
// and so on.
func AssignCitekeys(records []reference.Record) []string {
	used := make(map[string]int)
	keys := make([]string, len(records))
	for i := range records {
		base := citekeyBase(&records[i])
		used[base]++
		if used[base] == 1 {
			keys[i] = base
		} else {
			keys[i] = fmt.Sprintf("%s_%d", base, used[base])
		}
	}
	return keys
}

func citekeyBase(rec *reference.Record) string {
	var b strings.Builder
	for _, r := range identity.FirstAuthorLast(rec.Authors) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	author := b.String()
	if author == "" {
		author = "Unknown"
	}
	year := strings.TrimSpace(rec.Year)
	if year == "" {
		year = "0000"
	}
	return author + "_" + year
}

// entryType maps the record type onto a BibTeX entry type.
func entryType(rec reference.Record) string {
	switch rec.Type {
	case reference.TypeBook:
		return "book"
	case reference.TypeArticle:
		return "article"
	default:
		return "misc"
	}
}

// formatAuthors converts "Last, First; Last, First" or "First Last and
// First Last" into BibTeX style: "Last, First and Last, First".
func formatAuthors(authors string) string {
	text := strings.TrimSpace(authors)
	if text == "" {
		return ""
	}

	var parts []string
	switch {
	case strings.Contains(text, ";"):
		parts = strings.Split(text, ";")
	case strings.Contains(text, " and "):
		parts = strings.Split(text, " and ")
	default:
		parts = []string{text}
	}

	var formatted []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, ",") {
			formatted = append(formatted, part)
			continue
		}
		tokens := strings.Fields(part)
		if len(tokens) >= 2 {
			last := tokens[len(tokens)-1]
			first := strings.Join(tokens[:len(tokens)-1], " ")
			formatted = append(formatted, fmt.Sprintf("%s, %s", last, first))
		} else {
			formatted = append(formatted, part)
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
