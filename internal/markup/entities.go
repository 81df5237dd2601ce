package markup

import "strings"

// entityTable maps the character references that commonly appear in e-book
// markup to their literal characters. Anything outside this table passes
// through untouched.
var entityTable = map[string]string{
	"&nbsp;":   " ",
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   "\"",
	"&apos;":   "'",
	"&mdash;":  "—",
	"&ndash;":  "–",
	"&hellip;": "...",
	"&ldquo;":  "“",
	"&rdquo;":  "”",
	"&lsquo;":  "‘",
	"&rsquo;":  "’",
}

// maxEntityLen is the longest key in entityTable, including '&' and ';'.
const maxEntityLen = 9

var entityReplacer *strings.Replacer

func init() {
	pairs := make([]string, 0, len(entityTable)*2)
	for ref, lit := range entityTable {
		pairs = append(pairs, ref, lit)
	}
	entityReplacer = strings.NewReplacer(pairs...)
}

// DecodeEntities replaces every known character reference in s with its
// literal character.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// matchEntity checks whether s[i:] begins with a known character reference.
// s[i] must be '&'.
func matchEntity(s string, i int) (literal string, length int, ok bool) {
	end := i + maxEntityLen
	if end > len(s) {
		end = len(s)
	}
	for j := i + 1; j < end; j++ {
		if s[j] == ';' {
			if lit, ok := entityTable[s[i:j+1]]; ok {
				return lit, j + 1 - i, true
			}
			return "", 0, false
		}
	}
	return "", 0, false
}
