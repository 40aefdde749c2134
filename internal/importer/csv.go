package importer

import (
	"fmt"
	"io"
	"os"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

// ParseCSV reads rows carrying any subset of the master columns. Every row
// is tagged with source csv.
func ParseCSV(r io.Reader) ([]reference.Record, error) {
	records, err := storage.ParseRecordsCSV(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV import: %w", err)
	}
	for i := range records {
		records[i].Source = SourceCSV
	}
	return records, nil
}

// ReadCSVFile opens path and parses it with ParseCSV.
func ReadCSVFile(path string) ([]reference.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ReadPaperpileFile reads a Paperpile JSON export from disk.
func ReadPaperpileFile(path string) ([]reference.Record, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("reading %s: %w", path, err)}
	}
	return ParsePaperpile(data)
}

// Apply merges imported rows into e and returns the resulting counters
// delta.
func Apply(e *catalog.Engine, records []reference.Record) catalog.Counters {
	before := e.Counters()
	for _, rec := range records {
		e.Merge(rec)
	}
	after := e.Counters()
	return catalog.Counters{
		Created: after.Created - before.Created,
		Updated: after.Updated - before.Updated,
		Matched: after.Matched - before.Matched,
	}
}
