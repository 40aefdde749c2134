package pdf

import (
	"regexp"
	"strings"
)

var isbnCandidate = regexp.MustCompile(`[0-9Xx][0-9Xx -]{8,20}[0-9Xx]`)

// FindISBN returns the first ISBN-10 or ISBN-13 in text whose check digit
// is valid, with separators removed.
func FindISBN(text string) string {
	for _, raw := range isbnCandidate.FindAllString(text, -1) {
		cleaned := cleanISBN(raw)
		if ValidISBN(cleaned) {
			return cleaned
		}
	}
	return ""
}

// ValidISBN reports whether s is a separator-free ISBN-10 or ISBN-13 with a
// correct check digit.
func ValidISBN(s string) bool {
	switch len(s) {
	case 10:
		return validISBN10(s)
	case 13:
		return validISBN13(s)
	}
	return false
}

func cleanISBN(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteByte('X')
		}
	}
	return b.String()
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	if !strings.HasPrefix(s, "978") && !strings.HasPrefix(s, "979") {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
