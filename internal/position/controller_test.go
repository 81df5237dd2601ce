package position

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dmitrysobolev/bookrat/internal/bookmark"
)

// fakeSource is an in-memory chapter source.
type fakeSource struct {
	chapters []string
	pos      int
	failFrom int // Advance fails when it would reach this index; -1 disables
	unread   map[int]bool
}

func newFakeSource(chapters ...string) *fakeSource {
	return &fakeSource{chapters: chapters, failFrom: -1}
}

func (f *fakeSource) ChapterCount() int { return len(f.chapters) }

func (f *fakeSource) CurrentChapterText() (string, bool) {
	if f.unread[f.pos] {
		return "", false
	}
	return f.chapters[f.pos], true
}

func (f *fakeSource) Advance() bool {
	next := f.pos + 1
	if next >= len(f.chapters) || next == f.failFrom {
		return false
	}
	f.pos = next
	return true
}

func (f *fakeSource) Retreat() bool {
	if f.pos <= 0 {
		return false
	}
	f.pos--
	return true
}

func (f *fakeSource) Seek(index int) {
	if index < 0 {
		index = 0
	}
	if last := len(f.chapters) - 1; index > last {
		index = last
	}
	f.pos = index
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	store := bookmark.LoadFrom(filepath.Join(t.TempDir(), "bookmarks.json"))
	return NewController(store, zap.NewNop())
}

func TestOpenSkipsMetadataChapter(t *testing.T) {
	c := newTestController(t)
	src := newFakeSource(
		"<p>metadata</p>",
		"<p>one</p>", "<p>two</p>", "<p>three</p>", "<p>four</p>",
	)

	c.Open("book", src)

	pos := c.Pos()
	if pos.Chapter != 1 {
		t.Errorf("Chapter = %d, want 1", pos.Chapter)
	}
	if pos.ScrollOffset != 0 {
		t.Errorf("ScrollOffset = %d, want 0", pos.ScrollOffset)
	}
	if pos.TotalChapters != 5 {
		t.Errorf("TotalChapters = %d, want 5", pos.TotalChapters)
	}
	if c.Content() != "one" {
		t.Errorf("Content = %q, want %q", c.Content(), "one")
	}
}

func TestOpenSingleChapterStaysAtZero(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>only</p>"))

	if pos := c.Pos(); pos.Chapter != 0 {
		t.Errorf("Chapter = %d, want 0", pos.Chapter)
	}
}

func TestOpenRestoresBookmark(t *testing.T) {
	c := newTestController(t)
	c.store.Update("book", 3, 120)

	src := newFakeSource("<p>m</p>", "<p>a</p>", "<p>b</p>", "<p>c</p>", "<p>d</p>")
	c.Open("book", src)

	pos := c.Pos()
	if pos.Chapter != 3 {
		t.Errorf("Chapter = %d, want 3", pos.Chapter)
	}
	if pos.ScrollOffset != 120 {
		t.Errorf("ScrollOffset = %d, want 120", pos.ScrollOffset)
	}
	if c.Content() != "c" {
		t.Errorf("Content = %q, want %q", c.Content(), "c")
	}
}

func TestOpenFallsBackOnFailedReplay(t *testing.T) {
	c := newTestController(t)
	c.store.Update("book", 3, 120)

	src := newFakeSource("<p>m</p>", "<p>a</p>", "<p>b</p>", "<p>c</p>")
	src.failFrom = 2 // replay breaks before reaching the bookmark
	c.Open("book", src)

	pos := c.Pos()
	if pos.Chapter != 1 {
		t.Errorf("Chapter = %d, want 1 after fallback", pos.Chapter)
	}
	if pos.ScrollOffset != 0 {
		t.Errorf("ScrollOffset = %d, want 0 after fallback", pos.ScrollOffset)
	}
}

func TestChapterNavigationBounds(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<p>a</p>", "<p>b</p>"))

	c.NextChapter()
	if pos := c.Pos(); pos.Chapter != 2 {
		t.Fatalf("Chapter = %d, want 2", pos.Chapter)
	}

	// At the upper bound the call is a no-op.
	c.NextChapter()
	if pos := c.Pos(); pos.Chapter != 2 {
		t.Errorf("Chapter = %d after NextChapter at bound, want 2", pos.Chapter)
	}

	c.PrevChapter()
	c.PrevChapter()
	if pos := c.Pos(); pos.Chapter != 0 {
		t.Fatalf("Chapter = %d, want 0", pos.Chapter)
	}
	c.PrevChapter()
	if pos := c.Pos(); pos.Chapter != 0 {
		t.Errorf("Chapter = %d after PrevChapter at bound, want 0", pos.Chapter)
	}
}

func TestChapterChangeResetsScrollAndPersists(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<p>a</p>", "<p>b</p>"))

	c.ScrollDown()
	c.ScrollDown()
	if pos := c.Pos(); pos.ScrollOffset == 0 {
		t.Fatal("expected non-zero scroll offset")
	}

	c.NextChapter()
	if pos := c.Pos(); pos.ScrollOffset != 0 {
		t.Errorf("ScrollOffset = %d after chapter change, want 0", pos.ScrollOffset)
	}

	bm, ok := c.store.Get("book")
	if !ok {
		t.Fatal("expected persisted bookmark")
	}
	if bm.Chapter != 2 || bm.ScrollOffset != 0 {
		t.Errorf("bookmark = %+v, want chapter 2 offset 0", bm)
	}
}

func TestScrollAcceleration(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<p>text</p>"))

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.ScrollDown()
	if pos := c.Pos(); pos.ScrollSpeed != 1 {
		t.Fatalf("ScrollSpeed = %d after first scroll, want 1", pos.ScrollSpeed)
	}

	clock = clock.Add(50 * time.Millisecond)
	c.ScrollDown()
	if pos := c.Pos(); pos.ScrollSpeed != 2 {
		t.Errorf("ScrollSpeed = %d after fast second scroll, want 2", pos.ScrollSpeed)
	}

	// Direction change does not reset the acceleration.
	clock = clock.Add(50 * time.Millisecond)
	c.ScrollUp()
	if pos := c.Pos(); pos.ScrollSpeed != 3 {
		t.Errorf("ScrollSpeed = %d after fast reverse scroll, want 3", pos.ScrollSpeed)
	}

	clock = clock.Add(200 * time.Millisecond)
	c.ScrollDown()
	if pos := c.Pos(); pos.ScrollSpeed != 1 {
		t.Errorf("ScrollSpeed = %d after pause, want 1", pos.ScrollSpeed)
	}
}

func TestScrollSpeedCap(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<p>text</p>"))

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	for i := 0; i < 20; i++ {
		c.ScrollDown()
		clock = clock.Add(10 * time.Millisecond)
	}
	if pos := c.Pos(); pos.ScrollSpeed != maxScrollSpeed {
		t.Errorf("ScrollSpeed = %d, want cap %d", pos.ScrollSpeed, maxScrollSpeed)
	}
}

func TestScrollUpSaturatesAtZero(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<p>text</p>"))

	c.ScrollUp()
	if pos := c.Pos(); pos.ScrollOffset != 0 {
		t.Errorf("ScrollOffset = %d, want 0", pos.ScrollOffset)
	}
}

func TestReadFailurePlaceholder(t *testing.T) {
	c := newTestController(t)
	src := newFakeSource("<p>m</p>", "<p>a</p>")
	src.unread = map[int]bool{1: true}
	c.Open("book", src)

	if c.Content() != PlaceholderReadError {
		t.Errorf("Content = %q, want %q", c.Content(), PlaceholderReadError)
	}
}

func TestEmptyChapterPlaceholder(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<div>  </div>"))

	if c.Content() != PlaceholderEmpty {
		t.Errorf("Content = %q, want %q", c.Content(), PlaceholderEmpty)
	}
}

func TestGenerationAdvancesOnRegenerate(t *testing.T) {
	c := newTestController(t)
	c.Open("book", newFakeSource("<p>m</p>", "<p>a</p>", "<p>b</p>"))

	gen := c.Generation()
	c.ScrollDown()
	if c.Generation() != gen {
		t.Error("scrolling must not regenerate content")
	}
	c.NextChapter()
	if c.Generation() == gen {
		t.Error("chapter change must regenerate content")
	}
}
