package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/motherload/internal/identity"
	"github.com/matsen/motherload/internal/reference"
)

var (
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	doiFieldRegex   = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *BibTeXIndex) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[identity.NormalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist or is empty.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			doi := identity.NormalizeDOI(matches[1])
			if doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// AppendNew appends the records missing from the .bib file at path and
// returns how many were written. Keys are assigned over the full record
// list so they match a fresh export.
func AppendNew(path string, records []reference.Record) (int, error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, err
	}

	keys := AssignCitekeys(records)
	var b strings.Builder
	added := 0
	for i := range records {
		if idx.HasEntry(keys[i], records[i].DOI) {
			continue
		}
		if added > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ToBibTeX(records[i], keys[i]))
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, AppendToBibFile(path, b.String())
}

// AppendToBibFile appends BibTeX content to a file.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}
