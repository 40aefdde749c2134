// Package reference defines the catalog record shared by every ingest path.
package reference

// Record is one row of the master catalog. All fields are plain strings so a
// row round-trips through CSV without loss; Type and Version are closed enums.
type Record struct {
	// Identity
	DOI         string `json:"doi"`
	ISBN        string `json:"isbn"`
	Fingerprint string `json:"fingerprint"`
	FileHash    string `json:"file_hash"`
	PrimaryID   string `json:"primary_id"`

	// Bibliographic
	Title   string `json:"title"`
	Authors string `json:"authors"` // "Family, Given; Family, Given" or free text
	Year    string `json:"year"`
	Journal string `json:"journal"`
	Venue   string `json:"venue"`
	Volume  string `json:"volume"`
	Issue   string `json:"issue"`
	Pages   string `json:"pages"`
	URL     string `json:"url"`

	// Provenance
	Type        DocType `json:"type"`
	Version     Version `json:"version"`
	ReplacedBy  string  `json:"replaced_by"` // primary_id of the final version
	Source      string  `json:"source"`      // scan, manual, csv, paperpile
	Collection  string  `json:"collection"`
	PDFPath     string  `json:"pdf_path"`
	AddedAt     string  `json:"added_at"`
	LastSeenRun string  `json:"last_seen_run"`
}

// Columns is the fixed column order of the persisted master table.
var Columns = []string{
	"doi", "isbn", "title", "authors", "year", "type",
	"journal", "venue", "volume", "issue", "pages", "url",
	"pdf_path", "file_hash", "collection",
	"primary_id", "fingerprint", "version", "replaced_by",
	"source", "added_at", "last_seen_run",
}

// Get returns the value of the named column, or "" for an unknown column.
func (r *Record) Get(column string) string {
	if p := r.field(column); p != nil {
		return *p
	}
	switch column {
	case "type":
		return string(r.Type)
	case "version":
		return string(r.Version)
	}
	return ""
}

// Set assigns the named column. Unknown columns are ignored.
func (r *Record) Set(column, value string) {
	if p := r.field(column); p != nil {
		*p = value
		return
	}
	switch column {
	case "type":
		r.Type = ParseDocType(value)
	case "version":
		r.Version = ParseVersion(value)
	}
}

func (r *Record) field(column string) *string {
	switch column {
	case "doi":
		return &r.DOI
	case "isbn":
		return &r.ISBN
	case "fingerprint":
		return &r.Fingerprint
	case "file_hash":
		return &r.FileHash
	case "primary_id":
		return &r.PrimaryID
	case "title":
		return &r.Title
	case "authors":
		return &r.Authors
	case "year":
		return &r.Year
	case "journal":
		return &r.Journal
	case "venue":
		return &r.Venue
	case "volume":
		return &r.Volume
	case "issue":
		return &r.Issue
	case "pages":
		return &r.Pages
	case "url":
		return &r.URL
	case "replaced_by":
		return &r.ReplacedBy
	case "source":
		return &r.Source
	case "collection":
		return &r.Collection
	case "pdf_path":
		return &r.PDFPath
	case "added_at":
		return &r.AddedAt
	case "last_seen_run":
		return &r.LastSeenRun
	}
	return nil
}

// Values returns the row in Columns order.
func (r *Record) Values() []string {
	out := make([]string, len(Columns))
	for i, col := range Columns {
		out[i] = r.Get(col)
	}
	return out
}

// HasPDF reports whether the record is backed by a file on disk.
func (r *Record) HasPDF() bool {
	return r.PDFPath != "" || r.FileHash != ""
}
