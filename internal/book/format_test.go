package book

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDispatchesByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.markdown")
	if err := os.WriteFile(path, []byte("# One\ntext\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if _, ok := src.(*Markdown); !ok {
		t.Errorf("Open returned %T, want *Markdown", src)
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	if _, err := Open("book.pdf"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"alice.epub", true},
		{"ALICE.EPUB", true},
		{"notes.md", true},
		{"notes.markdown", true},
		{"paper.pdf", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := Supported(tt.path); got != tt.expected {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.epub", "a.md", "ignore.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.epub"), 0755); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	books, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	want := []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.epub")}
	if len(books) != len(want) {
		t.Fatalf("Discover returned %v, want %v", books, want)
	}
	for i := range want {
		if books[i] != want[i] {
			t.Errorf("books[%d] = %q, want %q", i, books[i], want[i])
		}
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
