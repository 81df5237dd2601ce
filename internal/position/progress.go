package position

import (
	"math"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// Percent estimates how far through the chapter the viewport is, 0 to 100.
// The line count is wrap-aware: content is word-wrapped at the viewport
// width first, so the estimate tracks what the reader actually sees. Content
// that fits entirely is always 100. Recomputed on every draw because the
// viewport can resize between draws.
func Percent(content string, width, height, scrollOffset int) int {
	if width <= 0 || height <= 0 {
		return 100
	}
	wrapped := wordwrap.String(content, width)
	lines := strings.Count(wrapped, "\n") + 1
	maxScroll := lines - height
	if maxScroll <= 0 {
		return 100
	}
	pct := int(math.Round(float64(scrollOffset) * 100 / float64(maxScroll)))
	if pct > 100 {
		pct = 100
	}
	return pct
}
