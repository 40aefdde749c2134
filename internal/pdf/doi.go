package pdf

import (
	"regexp"
	"strings"
)

// doiPrefixedPattern matches a DOI introduced by "doi:" or a doi.org URL.
var doiPrefixedPattern = regexp.MustCompile(`(?i)(?:doi:\s*|https?://(?:dx\.)?doi\.org/)(10\.\d{4,9}/[^\s"<>]+)`)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
// More specific: 10.\d{4,9}/[-._;()/:A-Z0-9]+
var doiPattern = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:A-Z0-9]+`)

var (
	doiURLPrefix   = regexp.MustCompile(`(?i)^https?://(?:dx\.)?doi\.org/`)
	doiLabelPrefix = regexp.MustCompile(`(?i)^doi:\s*`)
)

// CleanDOI strips URL and "doi:" prefixes and trailing punctuation, and
// lowercases the result.
func CleanDOI(value string) string {
	cleaned := strings.TrimSpace(value)
	cleaned = doiURLPrefix.ReplaceAllString(cleaned, "")
	cleaned = doiLabelPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimRight(strings.TrimSpace(cleaned), ").,;]")
	return strings.ToLower(cleaned)
}

// FindDOI finds a DOI in text. An explicitly labelled DOI is preferred over
// a bare 10.xxxx/ match.
func FindDOI(text string) string {
	if text == "" {
		return ""
	}
	if m := doiPrefixedPattern.FindStringSubmatch(text); m != nil {
		if doi := CleanDOI(m[1]); isValidDOI(doi) {
			return doi
		}
	}

	for _, match := range doiPattern.FindAllString(text, -1) {
		if doi := CleanDOI(match); isValidDOI(doi) {
			return doi
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	// Must start with 10. and have something after the /
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}
