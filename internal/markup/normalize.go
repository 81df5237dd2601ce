// Package markup turns raw book-chapter markup into plain text with inline
// style sentinels: _..._ for emphasis and **...** for strong. It is not an
// HTML parser; it applies a fixed sequence of best-effort passes tuned for
// the markup subset found in typical e-books.
package markup

import (
	"regexp"
	"strings"
)

// styleRuleRE matches embedded style rule blocks (selector { declarations })
// that some books carry inline with the chapter body.
var styleRuleRE = regexp.MustCompile(`[a-zA-Z0-9#.@]+\s*\{[^}]*\}`)

// italicRE re-wraps any well-formed emphasis pair unchanged, normalizing
// doubled sentinels left behind by adjacent emphasis tags.
var italicRE = regexp.MustCompile(`_([^_]+)_`)

// Normalize converts raw chapter markup into intermediate markup: plain text
// with sentinel characters, newline-delimited paragraphs and a 4-space
// indent marking every paragraph after the first. The result contains no tag
// syntax, no raw character references, no leading space on the first line
// and at most one consecutive blank line. An empty string means the chapter
// had no renderable content; callers substitute their own placeholder.
func Normalize(raw string) string {
	s := styleRuleRE.ReplaceAllString(raw, "")
	s = convertTags(s)
	s = italicRE.ReplaceAllString(s, "_${1}_")
	return CollapseWhitespace(s)
}

// convertTags is a single left-to-right scan that canonicalizes structural
// tags, strips everything else tag-shaped, collapses space runs, drops
// line-leading spaces and decodes character references. Decoding happens at
// the point a reference is seen, which preserves the two ordering
// invariants the pass sequence demands: references inside a removed tag are
// consumed with the tag, and a literal '<' or '>' produced by decoding is
// emitted as text, never re-read as a tag. Decoded characters are likewise
// exempt from space collapsing.
func convertTags(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	last := byte(0)      // last byte written
	atLineStart := true  // no text emitted yet on the current output line
	spaceRun := false    // previous emission was a collapsed space run
	sawParagraph := false

	writeByte := func(b byte) {
		out.WriteByte(b)
		last = b
		spaceRun = false
	}
	writeString := func(t string) {
		if t == "" {
			return
		}
		out.WriteString(t)
		last = t[len(t)-1]
		spaceRun = false
	}
	newline := func() {
		writeByte('\n')
		atLineStart = true
	}
	ensureNewline := func() {
		if out.Len() > 0 && last != '\n' {
			newline()
		}
	}
	indent := func() {
		writeString(paragraphIndent)
		atLineStart = false
	}

	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '<':
			name, closing, width, ok := parseTag(s, i)
			if !ok {
				// Truncated tag spanning past the fragment or line
				// boundary; keep the bracket and the text after it.
				writeByte('<')
				atLineStart = false
				i++
				continue
			}
			i += width
			switch {
			case name == "p" && !closing:
				if !sawParagraph {
					sawParagraph = true
				} else {
					ensureNewline()
					indent()
				}
			case name == "p":
				newline()
			case isHeaderTag(name), name == "br":
				newline()
			case name == "blockquote" && !closing:
				ensureNewline()
				indent()
			case name == "blockquote":
				newline()
			case name == "em", name == "i":
				writeByte('_')
				atLineStart = false
			case name == "strong", name == "b":
				writeString("**")
				atLineStart = false
			}
			// Every other tag is dropped, bracket contents included.
		case '&':
			if lit, width, ok := matchEntity(s, i); ok {
				writeString(lit)
				atLineStart = false
				i += width
				continue
			}
			writeByte('&')
			atLineStart = false
			i++
		case ' ', '\t':
			if !atLineStart && !spaceRun {
				writeByte(' ')
				spaceRun = true
			}
			i++
		case '\n':
			newline()
			i++
		case '\r':
			i++
		default:
			writeByte(c)
			atLineStart = false
			i++
		}
	}
	return out.String()
}

const paragraphIndent = "    "

// parseTag reads a tag starting at s[i] (which must be '<'). The match is
// non-greedy and single-line: if no '>' appears before the next newline or
// the end of the fragment, the bracket is not a tag.
func parseTag(s string, i int) (name string, closing bool, width int, ok bool) {
	j := i + 1
	for ; j < len(s); j++ {
		if s[j] == '>' {
			break
		}
		if s[j] == '\n' || s[j] == '<' {
			return "", false, 0, false
		}
	}
	if j >= len(s) {
		return "", false, 0, false
	}
	inner := strings.TrimSpace(s[i+1 : j])
	if strings.HasPrefix(inner, "/") {
		closing = true
		inner = strings.TrimSpace(inner[1:])
	}
	end := 0
	for end < len(inner) && isTagNameByte(inner[end]) {
		end++
	}
	return strings.ToLower(inner[:end]), closing, j - i + 1, true
}

func isTagNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isHeaderTag(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}
