package markup

import (
	"regexp"
	"strings"
)

var multiNewlineRE = regexp.MustCompile(`\n{3,}`)

// CollapseWhitespace applies the final whitespace convention to normalized
// text: runs of two or more blank lines become exactly one, and the result
// carries no leading or trailing whitespace.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(multiNewlineRE.ReplaceAllString(s, "\n\n"))
}
