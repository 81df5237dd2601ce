package markup

import "strings"

// Run is a piece of one rendered line sharing a single style.
type Run struct {
	Text   string
	Italic bool
	Bold   bool
}

// Tokenizer splits lines of intermediate markup into styled runs by toggling
// two flags on sentinel characters. The flags carry across lines so that a
// style opened on one line continues on the next; an unmatched sentinel
// leaves its flag stuck for the rest of the chapter, which is accepted.
// Reset must be called whenever the chapter content is regenerated.
type Tokenizer struct {
	italic bool
	bold   bool
}

// Reset clears both style flags.
func (t *Tokenizer) Reset() {
	t.italic = false
	t.bold = false
}

// Line scans one line left to right and returns its styled runs. A '_'
// toggles italic, a '**' pair toggles bold, a lone '*' is literal text.
// Empty runs are not emitted.
func (t *Tokenizer) Line(line string) []Run {
	var runs []Run
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		runs = append(runs, Run{Text: buf.String(), Italic: t.italic, Bold: t.bold})
		buf.Reset()
	}

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '_':
			flush()
			t.italic = !t.italic
		case c == '*' && i+1 < len(line) && line[i+1] == '*':
			flush()
			t.bold = !t.bold
			i++
		default:
			buf.WriteByte(c)
		}
	}
	flush()
	return runs
}
