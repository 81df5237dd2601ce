// Package position owns the reading position: current chapter, scroll
// offset, scroll acceleration and the persisted bookmark for the open book.
package position

import (
	"time"

	"go.uber.org/zap"

	"github.com/dmitrysobolev/bookrat/internal/bookmark"
	"github.com/dmitrysobolev/bookrat/internal/markup"
)

// Placeholder strings substituted for chapters with nothing to show.
// Content errors never propagate past the controller.
const (
	PlaceholderEmpty     = "No content available in this chapter."
	PlaceholderReadError = "Error reading chapter content."
)

const (
	accelWindow    = 100 * time.Millisecond
	maxScrollSpeed = 10
)

// Source is what the controller needs from an open book.
type Source interface {
	ChapterCount() int
	CurrentChapterText() (text string, ok bool)
	Advance() bool
	Retreat() bool
	Seek(index int)
}

// Position is the transient reading position, rebuilt whenever a different
// book is opened.
type Position struct {
	Chapter       int
	TotalChapters int
	ScrollOffset  int
	ScrollSpeed   int
}

// Controller mediates every chapter and scroll change. It drives the chapter
// source, regenerates content on each transition and persists the bookmark
// after every mutation. Navigation failures are logged and leave the
// position unchanged.
type Controller struct {
	src    Source
	bookID string
	pos    Position

	content    string // intermediate markup, or a placeholder
	raw        string // untransformed chapter markup, for the debug view
	generation int

	lastScroll time.Time
	now        func() time.Time

	store *bookmark.Store
	log   *zap.Logger
}

// NewController returns a controller in the browsing state.
func NewController(store *bookmark.Store, log *zap.Logger) *Controller {
	return &Controller{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Reading reports whether a book is open.
func (c *Controller) Reading() bool { return c.src != nil }

// Pos returns the current reading position.
func (c *Controller) Pos() Position { return c.pos }

// Content returns the intermediate markup of the current chapter, or a
// placeholder when the chapter was empty or unreadable.
func (c *Controller) Content() string { return c.content }

// Raw returns the chapter markup before transformation.
func (c *Controller) Raw() string { return c.raw }

// Generation increments every time chapter content is regenerated. Renderers
// use it to know when to reset tokenizer state and rebuild caches.
func (c *Controller) Generation() int { return c.generation }

// Open adopts src as the current book and restores its saved position. With
// a bookmark present the source is driven forward one chapter at a time,
// verifying each step; any failure falls back to the start of the book. With
// no bookmark, a book with more than one chapter skips the assumed
// front-matter chapter and lands on chapter 1.
func (c *Controller) Open(id string, src Source) {
	c.src = src
	c.bookID = id
	c.pos = Position{TotalChapters: src.ChapterCount(), ScrollSpeed: 1}
	c.lastScroll = time.Time{}

	if bm, ok := c.store.Get(id); ok {
		c.log.Info("found bookmark",
			zap.String("book", id),
			zap.Int("chapter", bm.Chapter),
			zap.Int("scroll_offset", bm.ScrollOffset))
		if c.replayBookmark(bm) {
			c.pos.Chapter = bm.Chapter
			c.pos.ScrollOffset = bm.ScrollOffset
		} else {
			c.fallbackToStart()
		}
	} else if c.pos.TotalChapters > 1 {
		// Skip the first chapter, it is usually just metadata.
		if src.Advance() {
			c.pos.Chapter = 1
		} else {
			c.log.Error("failed to skip metadata chapter", zap.String("book", id))
		}
	}

	c.regenerate()
}

// replayBookmark steps the source forward from its initial position once per
// bookmarked chapter, verifying each step.
func (c *Controller) replayBookmark(bm bookmark.Bookmark) bool {
	for i := 0; i < bm.Chapter; i++ {
		if !c.src.Advance() {
			c.log.Error("failed to navigate to bookmarked chapter",
				zap.String("book", c.bookID),
				zap.Int("reached", i),
				zap.Int("want", bm.Chapter))
			return false
		}
	}
	return true
}

// fallbackToStart repositions at the beginning of the book after a failed
// bookmark replay, applying the same metadata skip as a first open.
func (c *Controller) fallbackToStart() {
	c.src.Seek(0)
	c.pos.Chapter = 0
	c.pos.ScrollOffset = 0
	if c.pos.TotalChapters > 1 && c.src.Advance() {
		c.pos.Chapter = 1
	}
}

// NextChapter advances one chapter. A no-op at the last chapter.
func (c *Controller) NextChapter() {
	if c.src == nil {
		return
	}
	if c.pos.Chapter >= c.pos.TotalChapters-1 {
		c.log.Info("already at last chapter")
		return
	}
	if !c.src.Advance() {
		c.log.Error("failed to move to next chapter", zap.Int("chapter", c.pos.Chapter))
		return
	}
	c.pos.Chapter++
	c.pos.ScrollOffset = 0
	c.regenerate()
	c.persist()
}

// PrevChapter retreats one chapter. A no-op at the first chapter.
func (c *Controller) PrevChapter() {
	if c.src == nil {
		return
	}
	if c.pos.Chapter <= 0 {
		c.log.Info("already at first chapter")
		return
	}
	if !c.src.Retreat() {
		c.log.Error("failed to move to previous chapter", zap.Int("chapter", c.pos.Chapter))
		return
	}
	c.pos.Chapter--
	c.pos.ScrollOffset = 0
	c.regenerate()
	c.persist()
}

// ScrollDown moves the scroll offset down by the current scroll speed.
func (c *Controller) ScrollDown() {
	if c.src == nil || c.content == "" {
		return
	}
	c.pos.ScrollOffset += c.bumpSpeed()
	c.persist()
}

// ScrollUp moves the scroll offset up, saturating at zero.
func (c *Controller) ScrollUp() {
	if c.src == nil || c.content == "" {
		return
	}
	step := c.bumpSpeed()
	if c.pos.ScrollOffset < step {
		c.pos.ScrollOffset = 0
	} else {
		c.pos.ScrollOffset -= step
	}
	c.persist()
}

// bumpSpeed applies the acceleration rule: scrolls arriving within the
// window grow the speed up to the cap, a pause resets it. The timestamp
// updates on every call regardless of direction, so an alternating burst
// keeps accelerating.
func (c *Controller) bumpSpeed() int {
	now := c.now()
	if !c.lastScroll.IsZero() && now.Sub(c.lastScroll) < accelWindow {
		if c.pos.ScrollSpeed < maxScrollSpeed {
			c.pos.ScrollSpeed++
		}
	} else {
		c.pos.ScrollSpeed = 1
	}
	c.lastScroll = now
	return c.pos.ScrollSpeed
}

// regenerate re-reads and re-transforms the current chapter.
func (c *Controller) regenerate() {
	c.generation++
	text, ok := c.src.CurrentChapterText()
	if !ok {
		c.log.Error("failed to get current chapter content",
			zap.String("book", c.bookID),
			zap.Int("chapter", c.pos.Chapter))
		c.raw = ""
		c.content = PlaceholderReadError
		return
	}
	c.raw = text

	normalized := markup.Normalize(text)
	if normalized == "" {
		c.log.Warn("chapter has no renderable content",
			zap.String("book", c.bookID),
			zap.Int("chapter", c.pos.Chapter))
		c.content = PlaceholderEmpty
		return
	}
	c.log.Debug("chapter content regenerated",
		zap.Int("chapter", c.pos.Chapter),
		zap.Int("raw_bytes", len(text)),
		zap.Int("text_bytes", len(normalized)))
	c.content = normalized
}

// persist overwrites the bookmark for the open book and flushes the store.
// Save failures are logged; the in-memory bookmark is kept.
func (c *Controller) persist() {
	c.store.Update(c.bookID, c.pos.Chapter, c.pos.ScrollOffset)
	if err := c.store.Save(); err != nil {
		c.log.Error("failed to save bookmark", zap.Error(err))
	}
}
