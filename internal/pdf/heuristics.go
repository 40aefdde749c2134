package pdf

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Guess is a best-effort title/authors/year read from weak evidence.
type Guess struct {
	Title   string
	Authors string
	Year    string
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

var affiliationWords = []string{"university", "department", "email", "@"}

// GuessFromText reads a title, an author line and a year from the first
// page of text. The title is the first substantial line in the first 20;
// the author line is the first line among the next five that looks like a
// list of names.
func GuessFromText(text string) Guess {
	var g Guess
	if text == "" {
		return g
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	titleAt := -1
	for i, line := range lines {
		if i >= 20 {
			break
		}
		if isTitleCandidate(line) {
			g.Title = line
			titleAt = i
			break
		}
	}

	if titleAt >= 0 {
		end := titleAt + 6
		if end > len(lines) {
			end = len(lines)
		}
		for _, line := range lines[titleAt+1 : end] {
			lower := strings.ToLower(line)
			if containsAny(lower, affiliationWords) {
				continue
			}
			if strings.Contains(line, ",") || strings.Contains(lower, " and ") {
				g.Authors = line
				break
			}
		}
	}

	g.Year = yearPattern.FindString(text)
	return g
}

func isTitleCandidate(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "doi") || lower == "abstract" || lower == "introduction" {
		return false
	}
	if len(line) < 5 || len(line) > 200 {
		return false
	}
	if isHeaderLine(line) {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 10 {
		return false
	}
	return len(strings.Fields(line)) >= 3
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// filenameWords turns "Smith_2020-Some-Title.pdf" into "Smith 2020 Some Title".
func filenameWords(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.NewReplacer("_", " ", "-", " ").Replace(stem)
}

// GuessFromFilename reads author/year/title guesses from a file name laid
// out as "<author> <words...>": the first word is the author, a 19xx/20xx
// token is the year, and with three or more words everything after the
// first is the title.
func GuessFromFilename(path string) Guess {
	var g Guess
	name := filenameWords(path)
	g.Year = yearPattern.FindString(name)

	parts := strings.Fields(name)
	if len(parts) > 0 {
		g.Authors = parts[0]
	}
	if len(parts) >= 3 {
		g.Title = strings.Join(parts[1:], " ")
	}
	return g
}

// DOIFromFilename looks for a DOI in the file name.
func DOIFromFilename(path string) string {
	return FindDOI(filenameWords(path))
}

// ISBNFromFilename looks for an ISBN in the file name.
func ISBNFromFilename(path string) string {
	return FindISBN(filenameWords(path))
}
