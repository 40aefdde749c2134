package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search results
	SearchTitleMaxLen  = 70 // Used in search result summaries
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputJSONCompact writes a value as compact JSON to stdout.
func outputJSONCompact(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printRecordSummary prints one catalog row for human output.
func printRecordSummary(num int, rec reference.Record) {
	fmt.Printf("[%d] %s\n", num, rec.PrimaryID)
	fmt.Printf("    %s\n", truncateString(rec.Title, SearchTitleMaxLen))
	if rec.Authors != "" {
		fmt.Printf("    %s\n", formatAuthorsShort(rec.Authors, 3))
	}
	container := rec.Journal
	if container == "" {
		container = rec.Venue
	}
	switch {
	case container != "" && rec.Year != "":
		fmt.Printf("    %s (%s)\n", container, rec.Year)
	case rec.Year != "":
		fmt.Printf("    (%s)\n", rec.Year)
	case container != "":
		fmt.Printf("    %s\n", container)
	}
	fmt.Println()
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort keeps the first maxCount authors of a "Last, First;
// ..." list and adds "et al." for the rest.
func formatAuthorsShort(authors string, maxCount int) string {
	var names []string
	for _, a := range strings.Split(authors, ";") {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	if len(names) > maxCount {
		names = append(names[:maxCount], "et al.")
	}
	return strings.Join(names, "; ")
}

// normalizeKey converts key formats (pdf-root, pdf_root, PDF_ROOT) to the
// yaml key form.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "-", "_")
	return key
}
