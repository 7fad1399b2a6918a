package staging

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dkarademir/docstage/internal/filex"
)

// Store is the staging directory. Files keep their original basename, so a
// name collision means the slot is already occupied.
type Store struct {
	dir  string
	exts map[string]struct{}
}

// NewStore resolves and creates the staging directory and remembers the
// supported extension set (lowercase, dot-prefixed).
func NewStore(dir string, extensions []string) (*Store, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}

	return &Store{dir: abs, exts: exts}, nil
}

// Dir returns the absolute staging directory path.
func (s *Store) Dir() string { return s.dir }

// Supported reports whether the path carries a supported extension.
func (s *Store) Supported(path string) bool {
	_, ok := s.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// TargetPath returns the slot a filename occupies inside the store.
func (s *Store) TargetPath(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Contains reports whether the slot for filename is already occupied.
func (s *Store) Contains(filename string) bool {
	_, err := os.Stat(s.TargetPath(filename))
	return err == nil
}

// Copy stages src under its basename and returns the staged path. With
// overwrite false an occupied slot fails with os.ErrExist.
func (s *Store) Copy(src string, overwrite bool) (string, error) {
	dst := s.TargetPath(src)
	if err := filex.CopyFile(src, dst, overwrite); err != nil {
		return "", err
	}
	return dst, nil
}

// ListSupported returns the staged files with supported extensions,
// non-recursive, sorted by name.
func (s *Store) ListSupported() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !s.Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ClearFiles removes every regular file from the staging directory and
// returns how many were removed. The ledger is not touched.
func (s *Store) ClearFiles() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// ScanDir walks root recursively and returns every supported file found,
// sorted by path.
func (s *Store) ScanDir(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !s.Supported(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
