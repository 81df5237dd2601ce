// Package bookmark persists the last reading position for each book.
package bookmark

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const storeFileName = "bookmarks.json"

// Bookmark is the saved position for one book.
type Bookmark struct {
	Chapter      int       `json:"chapter"`
	ScrollOffset int       `json:"scroll_offset"`
	LastRead     time.Time `json:"last_read"`
}

// Store maps book identifiers (file paths) to bookmarks and owns the
// persisted JSON file. The whole file is read once at load and rewritten in
// full on every save.
type Store struct {
	path  string
	books map[string]Bookmark
	mu    sync.RWMutex
}

// Load opens the store in XDG_STATE_HOME/bookrat (or ~/.local/state/bookrat).
// A missing or unreadable backing file yields an empty store, not an error;
// the returned store is always usable. The error reports directory creation
// problems for logging only.
func Load() (*Store, error) {
	dir := stateDir()
	err := os.MkdirAll(dir, 0755)
	store := LoadFrom(filepath.Join(dir, storeFileName))
	return store, err
}

// LoadFrom opens the store backed by an explicit file path.
func LoadFrom(path string) *Store {
	store := &Store{
		path:  path,
		books: make(map[string]Bookmark),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return store
	}
	if err := json.Unmarshal(data, &store.books); err != nil {
		store.books = make(map[string]Bookmark)
	}
	return store
}

// stateDir returns XDG_STATE_HOME/bookrat or ~/.local/state/bookrat.
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "bookrat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "bookrat")
}

// Get returns the bookmark for a book, if one exists.
func (s *Store) Get(id string) (Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bm, ok := s.books[id]
	return bm, ok
}

// Update records a new position for a book, stamping it with the current
// time. Any prior bookmark for the same id is replaced. The caller is
// expected to follow with Save; a failed Save leaves the in-memory update
// intact so the next successful one still carries it.
func (s *Store) Update(id string, chapter, scrollOffset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[id] = Bookmark{
		Chapter:      chapter,
		ScrollOffset: scrollOffset,
		LastRead:     time.Now().UTC(),
	}
}

// Save rewrites the backing file with the full store contents.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.MarshalIndent(s.books, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
