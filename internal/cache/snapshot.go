package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

type snapshotRow struct {
	kind  string
	key   string
	value string
}

func readSnapshot(path string) ([]snapshotRow, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking cache snapshot: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT kind, key, value FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("reading cache entries: %w", err)
	}
	defer rows.Close()

	var out []snapshotRow
	for rows.Next() {
		var r snapshotRow
		if err := rows.Scan(&r.kind, &r.key, &r.value); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// writeSnapshot replaces the snapshot contents in a single transaction.
func writeSnapshot(path string, rows []snapshotRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing cache entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entries (kind, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.kind, r.key, r.value); err != nil {
			return fmt.Errorf("inserting cache entry %s/%s: %w", r.kind, r.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache: %w", err)
	}
	return nil
}
