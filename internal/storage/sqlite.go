package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/reference"
	_ "modernc.org/sqlite"
)

// DB is a disposable SQLite mirror of the master table used for search.
// The CSV stays the source of truth; the mirror is rebuilt from it.
type DB struct {
	db *sql.DB
}

// selectRefFields lists the mirrored columns in reference.Columns order.
var selectRefFields = strings.Join(reference.Columns, ", ")

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	cols := make([]string, len(reference.Columns))
	for i, c := range reference.Columns {
		cols[i] = c + " TEXT NOT NULL DEFAULT ''"
	}
	schema := `
		CREATE TABLE IF NOT EXISTS refs (
			row_num INTEGER PRIMARY KEY,
			` + strings.Join(cols, ",\n\t\t\t") + `,
			complete INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_refs_doi ON refs(doi) WHERE doi != '';
		CREATE INDEX IF NOT EXISTS idx_refs_primary_id ON refs(primary_id);

		-- Full-text search virtual table (standalone, keyed by row_num)
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			title,
			authors,
			journal,
			venue
		);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildFromRecords clears the mirror and loads records into it.
func (d *DB) RebuildFromRecords(records []reference.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM refs"); err != nil {
		return 0, fmt.Errorf("clearing refs table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM refs_fts"); err != nil {
		return 0, fmt.Errorf("clearing refs_fts table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(reference.Columns)+2), ", ")
	refsStmt, err := tx.Prepare(`INSERT INTO refs (row_num, ` + selectRefFields + `, complete) VALUES (` + placeholders + `)`)
	if err != nil {
		return 0, fmt.Errorf("preparing refs insert: %w", err)
	}
	defer refsStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO refs_fts (rowid, title, authors, journal, venue) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i := range records {
		r := &records[i]
		args := make([]any, 0, len(reference.Columns)+2)
		args = append(args, i+1)
		for _, v := range r.Values() {
			args = append(args, v)
		}
		complete := 0
		if catalog.IsComplete(r) {
			complete = 1
		}
		args = append(args, complete)

		if _, err := refsStmt.Exec(args...); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", i+1, err)
		}
		if _, err := ftsStmt.Exec(i+1, r.Title, r.Authors, r.Journal, r.Venue); err != nil {
			return 0, fmt.Errorf("inserting fts for row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// Search performs a full-text search and returns matching records.
func (d *DB) Search(query string, limit int) ([]reference.Record, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
type SearchFilters struct {
	Keyword        string   // General keyword search across title/authors/journal/venue
	Title          string   // Search in title only (FTS)
	Authors        []string // Author names (AND logic, prefix matching)
	Type           string   // Exact type match
	YearFrom       int      // Minimum year (0 = no minimum)
	YearTo         int      // Maximum year (0 = no maximum)
	Collection     string   // Collection prefix
	IncompleteOnly bool     // Only rows failing the completeness rules
}

// SearchWithFilters returns records matching ALL specified criteria.
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]reference.Record, error) {
	var ftsTerms []string
	var args []any

	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}
	for _, author := range filters.Authors {
		if author != "" {
			ftsTerms = append(ftsTerms, "authors:"+prepareAuthorQuery(author))
		}
	}

	query := `SELECT ` + selectRefFields + ` FROM refs WHERE 1=1`
	if len(ftsTerms) > 0 {
		query += ` AND row_num IN (SELECT rowid FROM refs_fts WHERE refs_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	}
	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.YearFrom > 0 {
		query += " AND year != '' AND CAST(year AS INTEGER) >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND year != '' AND CAST(year AS INTEGER) <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.Collection != "" {
		query += " AND (collection = ? OR collection LIKE ?)"
		args = append(args, filters.Collection, filters.Collection+"/%")
	}
	if filters.IncompleteOnly {
		query += " AND complete = 0"
	}

	query += " ORDER BY row_num"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the number of mirrored rows.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&count)
	return count, err
}

func scanRecords(rows *sql.Rows) ([]reference.Record, error) {
	var out []reference.Record
	values := make([]string, len(reference.Columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		var r reference.Record
		for i, col := range reference.Columns {
			r.Set(col, values[i])
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) to enable fuzzy matching (e.g., "Tim" matches "Timothy").
func prepareAuthorQuery(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return author
	}

	parts := strings.Fields(author)
	var terms []string
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if strings.ContainsAny(query, "\"*+-:(){}[]^~,.;/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
