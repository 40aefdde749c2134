package reference

import "strings"

// DocType is the coarse kind of a catalog entry.
type DocType string

const (
	TypeUnknown DocType = "unknown"
	TypeArticle DocType = "article"
	TypeBook    DocType = "book"
)

// ParseDocType maps free text onto a DocType. Empty input stays empty so a
// blank CSV cell is distinguishable from an explicit "unknown".
func ParseDocType(s string) DocType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "article":
		return TypeArticle
	case "book":
		return TypeBook
	default:
		return TypeUnknown
	}
}

// IsConcrete reports whether t is article or book.
func (t DocType) IsConcrete() bool {
	return t == TypeArticle || t == TypeBook
}

// ClassifyType derives the type from the identifiers that were found:
// an ISBN means book, otherwise a DOI means article.
func ClassifyType(isbn, doi string) DocType {
	switch {
	case strings.TrimSpace(isbn) != "":
		return TypeBook
	case strings.TrimSpace(doi) != "":
		return TypeArticle
	default:
		return TypeUnknown
	}
}

// Version distinguishes a preprint from the version of record.
type Version string

const (
	VersionNone     Version = ""
	VersionPreprint Version = "preprint"
	VersionFinal    Version = "final"
)

// ParseVersion maps free text onto a Version; anything unrecognised is none.
func ParseVersion(s string) Version {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preprint":
		return VersionPreprint
	case "final":
		return VersionFinal
	default:
		return VersionNone
	}
}
