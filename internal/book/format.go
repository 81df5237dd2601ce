// Package book provides chapter sources: sequential, index-addressable
// access to a book's content fragments, one raw markup string per chapter.
package book

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is an open book. A source keeps a chapter cursor; the text of the
// chapter under the cursor is re-read on every call, and a read failure is
// reported with ok=false rather than an error.
type Source interface {
	ChapterCount() int
	CurrentChapterText() (text string, ok bool)
	Advance() bool
	Retreat() bool
	Seek(index int)
	Close() error
}

// Format opens books of a particular file format.
type Format interface {
	Name() string
	Extensions() []string
	Open(path string) (Source, error)
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Open opens the book at path using the registered format matching its
// extension.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Open(path)
			}
		}
	}
	return nil, fmt.Errorf("unsupported book format %q", ext)
}

// Supported reports whether some registered format handles the file.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return true
			}
		}
	}
	return false
}

// Discover lists the openable book files directly under dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan library %s: %w", dir, err)
	}
	var books []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if Supported(entry.Name()) {
			books = append(books, filepath.Join(dir, entry.Name()))
		}
	}
	return books, nil
}
