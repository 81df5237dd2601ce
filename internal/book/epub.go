package book

import (
	"fmt"
	"io"

	"github.com/taylorskalyo/goreader/epub"
)

// EPUBFormat opens EPUB containers.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }
func (f *EPUBFormat) Open(path string) (Source, error) {
	return OpenEPUB(path)
}

// EPUB is a chapter source over an EPUB container. Chapters are the spine
// items of the first rootfile, in reading order.
type EPUB struct {
	rc   *epub.ReadCloser
	book *epub.Rootfile
	pos  int
}

// OpenEPUB opens the container at path positioned on the first chapter.
func OpenEPUB(path string) (*EPUB, error) {
	rc, err := epub.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	return &EPUB{rc: rc, book: rc.Rootfiles[0]}, nil
}

func (e *EPUB) ChapterCount() int {
	return len(e.book.Spine.Itemrefs)
}

// CurrentChapterText reads the spine item under the cursor.
func (e *EPUB) CurrentChapterText() (string, bool) {
	if e.pos < 0 || e.pos >= len(e.book.Spine.Itemrefs) {
		return "", false
	}
	ref := e.book.Spine.Itemrefs[e.pos]
	if ref.Item == nil {
		return "", false
	}
	r, err := ref.Item.Open()
	if err != nil {
		return "", false
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (e *EPUB) Advance() bool {
	if e.pos+1 >= len(e.book.Spine.Itemrefs) {
		return false
	}
	e.pos++
	return true
}

func (e *EPUB) Retreat() bool {
	if e.pos <= 0 {
		return false
	}
	e.pos--
	return true
}

// Seek positions the cursor at index, clamped to the spine bounds.
func (e *EPUB) Seek(index int) {
	if index < 0 {
		index = 0
	}
	if last := len(e.book.Spine.Itemrefs) - 1; index > last && last >= 0 {
		index = last
	}
	e.pos = index
}

func (e *EPUB) Close() error {
	e.rc.Close()
	return nil
}
