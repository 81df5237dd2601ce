package book

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat opens Markdown files, treating each top-level run of text
// under a header as a chapter.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }
func (f *MarkdownFormat) Open(path string) (Source, error) {
	return OpenMarkdown(path)
}

// headerRegex matches markdown headers (# to ######)
var headerRegex = regexp.MustCompile(`^#{1,6}\s+.+$`)

// Markdown is a chapter source over a single Markdown file. Chapters are
// split at header lines; text before the first header forms its own chapter,
// and a file without headers is a single chapter.
type Markdown struct {
	chapters []string
	pos      int
}

// OpenMarkdown reads and splits the file at path.
func OpenMarkdown(path string) (*Markdown, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var chapters []string
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			chapters = append(chapters, text)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if headerRegex.MatchString(line) {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(chapters) == 0 {
		chapters = []string{""}
	}
	return &Markdown{chapters: chapters}, nil
}

func (m *Markdown) ChapterCount() int {
	return len(m.chapters)
}

func (m *Markdown) CurrentChapterText() (string, bool) {
	if m.pos < 0 || m.pos >= len(m.chapters) {
		return "", false
	}
	return m.chapters[m.pos], true
}

func (m *Markdown) Advance() bool {
	if m.pos+1 >= len(m.chapters) {
		return false
	}
	m.pos++
	return true
}

func (m *Markdown) Retreat() bool {
	if m.pos <= 0 {
		return false
	}
	m.pos--
	return true
}

func (m *Markdown) Seek(index int) {
	if index < 0 {
		index = 0
	}
	if last := len(m.chapters) - 1; index > last {
		index = last
	}
	m.pos = index
}

func (m *Markdown) Close() error { return nil }
