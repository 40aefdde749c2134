// Package cache memoizes provider lookups across runs.
//
// Entries are keyed by (kind, key) where kind names a provider endpoint and
// key is a DOI or a "title|authors|year" query. An empty Value is an explicit
// "no result" marker and is returned as a hit.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Value is the flat field map a provider produced.
type Value map[string]string

// Cache is an in-memory map of maps guarded by a single mutex. It is
// loaded from and saved to a SQLite snapshot.
type Cache struct {
	mu   sync.Mutex
	data map[string]map[string]Value
	path string
	log  *zap.Logger
}

// New returns an empty cache that will save to path. An empty path keeps
// the cache in memory only.
func New(path string, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		data: make(map[string]map[string]Value),
		path: path,
		log:  log,
	}
}

// Open loads the snapshot at path. A missing or unreadable snapshot yields
// an empty cache; it is never fatal.
func Open(path string, log *zap.Logger) *Cache {
	c := New(path, log)
	if path == "" {
		return c
	}
	n, err := c.load()
	if err != nil {
		c.log.Warn("cache snapshot unreadable, starting empty", zap.String("path", path), zap.Error(err))
		c.data = make(map[string]map[string]Value)
		return c
	}
	c.log.Debug("cache loaded", zap.String("path", path), zap.Int("entries", n))
	return c
}

// Get returns the cached value for (kind, key).
func (c *Cache) Get(kind, key string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[kind][key]
	if !ok {
		return nil, false
	}
	return v.clone(), true
}

// Set stores value under (kind, key). A nil value is stored as "no result".
func (c *Cache) Set(kind, key string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.data[kind]
	if !ok {
		bucket = make(map[string]Value)
		c.data[kind] = bucket
	}
	bucket[key] = value.clone()
}

// Len returns the number of entries for kind, or all entries if kind is "".
func (c *Cache) Len(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind != "" {
		return len(c.data[kind])
	}
	n := 0
	for _, bucket := range c.data {
		n += len(bucket)
	}
	return n
}

// Kinds returns the kinds that have at least one entry.
func (c *Cache) Kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]string, 0, len(c.data))
	for k, bucket := range c.data {
		if len(bucket) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Save writes the whole cache to its snapshot. Failures are logged and
// swallowed: losing the cache only costs repeated lookups next run.
func (c *Cache) Save() {
	if c.path == "" {
		return
	}
	if err := c.SaveErr(); err != nil {
		c.log.Warn("cache snapshot not saved", zap.String("path", c.path), zap.Error(err))
	}
}

// SaveErr is Save with the error returned instead of logged.
func (c *Cache) SaveErr() error {
	c.mu.Lock()
	rows := make([]snapshotRow, 0, 64)
	for kind, bucket := range c.data {
		for key, v := range bucket {
			data, err := json.Marshal(v)
			if err != nil {
				c.mu.Unlock()
				return fmt.Errorf("encoding %s/%s: %w", kind, key, err)
			}
			rows = append(rows, snapshotRow{kind: kind, key: key, value: string(data)})
		}
	}
	c.mu.Unlock()

	return writeSnapshot(c.path, rows)
}

func (c *Cache) load() (int, error) {
	rows, err := readSnapshot(c.path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		var v Value
		if err := json.Unmarshal([]byte(r.value), &v); err != nil {
			return 0, fmt.Errorf("decoding %s/%s: %w", r.kind, r.key, err)
		}
		if v == nil {
			v = Value{}
		}
		bucket, ok := c.data[r.kind]
		if !ok {
			bucket = make(map[string]Value)
			c.data[r.kind] = bucket
		}
		bucket[r.key] = v
	}
	return len(rows), nil
}

func (v Value) clone() Value {
	out := make(Value, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// openDB opens the snapshot database, creating the schema if needed.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		kind TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (kind, key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return db, nil
}
