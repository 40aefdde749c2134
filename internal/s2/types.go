// Package s2 is a client for the Semantic Scholar Academic Graph API, the
// secondary metadata provider.
package s2

// DefaultFields is the field list requested when none is configured.
const DefaultFields = "title,year,authors,venue,journal,externalIds"

// S2Paper represents a paper from the Semantic Scholar API.
type S2Paper struct {
	PaperID     string      `json:"paperId"`
	ExternalIDs ExternalIDs `json:"externalIds,omitempty"`
	Title       string      `json:"title"`
	Authors     []S2Author  `json:"authors,omitempty"`
	Year        int         `json:"year,omitempty"`
	Venue       string      `json:"venue,omitempty"`
	Journal     *S2Journal  `json:"journal,omitempty"`
	URL         string      `json:"url,omitempty"`
}

// ExternalIDs contains the external identifiers of a paper.
type ExternalIDs struct {
	DOI   string `json:"DOI,omitempty"`
	ArXiv string `json:"ArXiv,omitempty"`
}

// S2Author represents an author from the Semantic Scholar API.
type S2Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// S2Journal is the publication venue block of a paper.
type S2Journal struct {
	Name   string `json:"name,omitempty"`
	Volume string `json:"volume,omitempty"`
	Pages  string `json:"pages,omitempty"`
}

// SearchResponse is the response from the paper search endpoint.
type SearchResponse struct {
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Data   []S2Paper `json:"data"`
}
