package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetSet(t *testing.T) {
	c := New("", zap.NewNop())

	_, ok := c.Get("crossref", "10.1/x")
	assert.False(t, ok)

	c.Set("crossref", "10.1/x", Value{"title": "A"})
	v, ok := c.Get("crossref", "10.1/x")
	require.True(t, ok)
	assert.Equal(t, "A", v["title"])

	// mutating the returned value must not leak into the cache
	v["title"] = "B"
	v2, _ := c.Get("crossref", "10.1/x")
	assert.Equal(t, "A", v2["title"])
}

func TestNoResultMarker(t *testing.T) {
	c := New("", zap.NewNop())
	c.Set("crossref_search", "q", nil)

	v, ok := c.Get("crossref_search", "q")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestLenAndKinds(t *testing.T) {
	c := New("", zap.NewNop())
	c.Set("a", "1", Value{"x": "1"})
	c.Set("a", "2", Value{})
	c.Set("b", "1", Value{"y": "1"})

	assert.Equal(t, 2, c.Len("a"))
	assert.Equal(t, 3, c.Len(""))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Kinds())
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cache.db")

	c := New(path, zap.NewNop())
	c.Set("crossref", "10.1/x", Value{"title": "A", "year": "2020"})
	c.Set("semantic_search", "q", Value{})
	require.NoError(t, c.SaveErr())

	loaded := Open(path, zap.NewNop())
	assert.Equal(t, 2, loaded.Len(""))

	v, ok := loaded.Get("crossref", "10.1/x")
	require.True(t, ok)
	assert.Equal(t, Value{"title": "A", "year": "2020"}, v)

	v, ok = loaded.Get("semantic_search", "q")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c := New(path, zap.NewNop())
	c.Set("a", "1", Value{"x": "1"})
	require.NoError(t, c.SaveErr())

	c2 := New(path, zap.NewNop())
	c2.Set("b", "2", Value{"y": "2"})
	require.NoError(t, c2.SaveErr())

	loaded := Open(path, zap.NewNop())
	_, ok := loaded.Get("a", "1")
	assert.False(t, ok)
	_, ok = loaded.Get("b", "2")
	assert.True(t, ok)
}

func TestOpenMissingIsEmpty(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "nope.db"), zap.NewNop())
	assert.Equal(t, 0, c.Len(""))
}

func TestOpenCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database at all, just text"), 0644))

	c := Open(path, zap.NewNop())
	assert.Equal(t, 0, c.Len(""))
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	c := New(filepath.Join(blocker, "cache.db"), zap.NewNop())
	c.Set("a", "1", Value{"x": "1"})
	assert.Error(t, c.SaveErr())
	assert.NotPanics(t, c.Save)
}

func TestConcurrentAccess(t *testing.T) {
	c := New("", zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			c.Set("k", key, Value{"v": key})
			c.Get("k", key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, c.Len("k"))
}
