// Package pdf extracts the weak identity signals of a PDF: text of the
// first pages, the embedded info dictionary, candidate DOI and ISBN, and
// title/author/year guesses from the first page and the file name.
package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Options bounds how much of a document is read.
type Options struct {
	// MaxPagesText is the number of leading pages whose text is kept.
	MaxPagesText int
	// MaxPagesDOI is the number of pages searched for a DOI when the kept
	// text has none. Zero searches every page.
	MaxPagesDOI int
}

// DefaultOptions returns the default page limits.
func DefaultOptions() Options {
	return Options{MaxPagesText: 2, MaxPagesDOI: 0}
}

// Info is the subset of the PDF info dictionary used for identification.
type Info struct {
	Title    string
	Author   string
	Keywords string
	Year     string
}

// Signals is everything read locally from one PDF.
type Signals struct {
	Path     string
	FileHash string
	Text     string
	Info     Info
	DOI      string
	ISBN     string
	// FromText is the first-page heuristic guess.
	FromText Guess
	// FromFilename is the file-name guess.
	FromFilename Guess
}

// Extractor reads Signals from PDF files.
type Extractor struct {
	opts Options
}

// NewExtractor creates an Extractor. Non-positive MaxPagesText falls back
// to the default.
func NewExtractor(opts Options) *Extractor {
	if opts.MaxPagesText <= 0 {
		opts.MaxPagesText = DefaultOptions().MaxPagesText
	}
	if opts.MaxPagesDOI < 0 {
		opts.MaxPagesDOI = 0
	}
	return &Extractor{opts: opts}
}

// Extract validates, hashes and parses the PDF at path. Validation failures
// return a *FileError with the matching code; anything the parser rejects
// returns PARSE_FAIL.
func (e *Extractor) Extract(path string) (*Signals, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}
	hash, err := HashFile(path)
	if err != nil {
		return nil, &FileError{Code: CodeReadError, Path: path, Err: err}
	}

	s, err := e.parse(path)
	if err != nil {
		return nil, &FileError{Code: CodeParseFail, Path: path, Err: err}
	}
	s.FileHash = hash

	if s.DOI == "" {
		s.DOI = DOIFromFilename(path)
	}
	s.ISBN = FindISBN(s.Text)
	if s.ISBN == "" {
		s.ISBN = ISBNFromFilename(path)
	}
	s.FromText = GuessFromText(s.Text)
	s.FromFilename = GuessFromFilename(path)
	return s, nil
}

// parse reads text, info and an in-document DOI. The parser panics on some
// malformed files, so panics are turned into errors.
func (e *Extractor) parse(path string) (s *Signals, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s = &Signals{Path: path}
	s.Info = readInfo(r)
	s.Text = pageText(r, 1, e.opts.MaxPagesText)

	s.DOI = FindDOI(s.Text)
	if s.DOI == "" {
		limit := e.opts.MaxPagesDOI
		if limit <= 0 || limit > r.NumPage() {
			limit = r.NumPage()
		}
		for i := 1; i <= limit && s.DOI == ""; i++ {
			s.DOI = FindDOI(pageText(r, i, i))
		}
	}
	return s, nil
}

// pageText concatenates the plain text of pages from..to (1-based,
// inclusive). Pages that fail to decode are skipped.
func pageText(r *pdf.Reader, from, to int) string {
	if to > r.NumPage() {
		to = r.NumPage()
	}
	var builder strings.Builder
	for i := from; i <= to; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String()
}

func readInfo(r *pdf.Reader) Info {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return Info{}
	}
	out := Info{
		Title:    strings.TrimSpace(info.Key("Title").Text()),
		Author:   strings.TrimSpace(info.Key("Author").Text()),
		Keywords: strings.TrimSpace(info.Key("Keywords").Text()),
	}
	out.Year = yearPattern.FindString(info.Key("CreationDate").Text())
	return out
}
