// Package storage handles catalog persistence: the master table as CSV and
// JSON, JSONL detail logs, and a SQLite mirror for querying.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadJSONL reads every line of a JSONL file into a T. A missing file
// yields no entries.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		out = append(out, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return out, nil
}

// WriteJSONL writes items one per line, replacing existing content.
func WriteJSONL[T any](path string, items []T) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for i, item := range items {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("encoding entry %d: %w", i, err)
			}
		}
		return nil
	})
}

// AppendJSONL adds one item to the end of a JSONL file.
func AppendJSONL[T any](path string, item T) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}
