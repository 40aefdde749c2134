package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FindPDFs returns every *.pdf under root in lexical order. Hidden
// directories are skipped.
func FindPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// Collection labels a file by its place under root: a/b/sub/file.pdf is in
// a/b, a/b/file.pdf and a/file.pdf are in a, and a file directly under root
// has no collection.
func Collection(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch {
	case len(parts) >= 3:
		return strings.Join(parts[:len(parts)-2], "/")
	case len(parts) == 2:
		return parts[0]
	default:
		return ""
	}
}
