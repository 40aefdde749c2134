package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/motherload/internal/reference"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCatalog reads a master table CSV. A missing file is an empty table.
// Header names are matched case-insensitively and unknown columns are
// ignored. Any other failure wraps ErrCatalogRead.
func ReadCatalog(path string) ([]reference.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
	}

	records, err := ParseRecordsCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogRead, path, err)
	}
	return records, nil
}

// ParseRecordsCSV decodes CSV rows into records. The header row decides
// which column each cell feeds.
func ParseRecordsCSV(r io.Reader) ([]reference.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), utf8BOM))
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []reference.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}

		var rec reference.Record
		empty := true
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			rec.Set(header[i], cell)
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}

// WriteCatalog writes the master table CSV with the fixed column order.
// Failures wrap ErrCatalogWrite.
func WriteCatalog(path string, records []reference.Record) error {
	if err := WriteRecordsCSV(path, records); err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogWrite, err)
	}
	return nil
}

// WriteRecordsCSV writes records with the master column set.
func WriteRecordsCSV(path string, records []reference.Record) error {
	rows := make([][]string, len(records))
	for i := range records {
		rows[i] = records[i].Values()
	}
	return WriteCSV(path, reference.Columns, rows)
}

// WriteCSV writes a header and rows atomically.
func WriteCSV(path string, header []string, rows [][]string) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("writing rows: %w", err)
		}
		return nil
	})
}

// WriteJSON writes v as indented JSON atomically.
func WriteJSON(path string, v any) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	})
}

// RecordsJSON renders records as an array of column → value objects, one
// key per master column.
func RecordsJSON(records []reference.Record) []map[string]string {
	out := make([]map[string]string, len(records))
	for i := range records {
		row := make(map[string]string, len(reference.Columns))
		for _, col := range reference.Columns {
			row[col] = records[i].Get(col)
		}
		out[i] = row
	}
	return out
}

// WriteCatalogJSON writes the JSON array-of-objects export of records.
func WriteCatalogJSON(path string, records []reference.Record) error {
	return WriteJSON(path, RecordsJSON(records))
}

// WriteFile writes data atomically.
func WriteFile(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
