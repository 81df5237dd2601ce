//go:build !gui

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"github.com/dmitrysobolev/bookrat/internal/book"
	"github.com/dmitrysobolev/bookrat/internal/bookmark"
	"github.com/dmitrysobolev/bookrat/internal/config"
	"github.com/dmitrysobolev/bookrat/internal/markup"
	"github.com/dmitrysobolev/bookrat/internal/position"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	listBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	contentBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1)

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#00AAFF")).
				Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AAFF"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFAA00"))

	annotationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	italicStyle = lipgloss.NewStyle().Italic(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	PrevChapter key.Binding
	NextChapter key.Binding
	Open        key.Binding
	Back        key.Binding
	ToggleRaw   key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	PrevChapter: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "prev chapter")),
	NextChapter: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next chapter")),
	Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "library")),
	ToggleRaw:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "raw markup")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

type model struct {
	log   *zap.Logger
	store *bookmark.Store
	ctrl  *position.Controller

	books  []string
	cursor int

	src      book.Source
	browsing bool
	showRaw  bool
	status   string

	width  int
	height int

	// styled lines are cached per content generation and pane width
	cacheGen   int
	cacheWidth int
	cacheRaw   bool
	cacheLines []string
}

func newModel(books []string, store *bookmark.Store, log *zap.Logger) *model {
	return &model{
		log:      log,
		store:    store,
		ctrl:     position.NewController(store, log),
		books:    books,
		browsing: true,
		width:    80,
		height:   24,
	}
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.src != nil {
				m.src.Close()
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.browsing {
				if m.cursor > 0 {
					m.cursor--
				}
			} else {
				m.ctrl.ScrollUp()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.browsing {
				if m.cursor < len(m.books)-1 {
					m.cursor++
				}
			} else {
				m.ctrl.ScrollDown()
			}
			return m, nil

		case key.Matches(msg, keys.Open):
			if m.browsing && len(m.books) > 0 {
				m.openBook(m.books[m.cursor])
			}
			return m, nil

		case key.Matches(msg, keys.Back):
			if m.ctrl.Reading() {
				m.browsing = !m.browsing
			}
			return m, nil

		case key.Matches(msg, keys.PrevChapter):
			if !m.browsing {
				m.ctrl.PrevChapter()
			}
			return m, nil

		case key.Matches(msg, keys.NextChapter):
			if !m.browsing {
				m.ctrl.NextChapter()
			}
			return m, nil

		case key.Matches(msg, keys.ToggleRaw):
			if !m.browsing {
				m.showRaw = !m.showRaw
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// periodic redraw keeps the last-read annotations current
		return m, tick()
	}

	return m, nil
}

func (m *model) openBook(path string) {
	src, err := book.Open(path)
	if err != nil {
		m.status = fmt.Sprintf("Cannot open %s: %v", filepath.Base(path), err)
		m.log.Error("failed to open book", zap.String("path", path), zap.Error(err))
		return
	}
	if m.src != nil {
		m.src.Close()
	}
	m.src = src
	m.status = ""
	m.ctrl.Open(path, src)
	m.browsing = false
}

// listWidth returns the inner width of the library pane.
func (m *model) listWidth() int {
	w := m.width * 3 / 10
	if w < 20 {
		w = 20
	}
	return w
}

func (m *model) contentSize() (int, int) {
	// borders and padding eat 4 columns per pane, title and controls
	// rows eat into the height
	w := m.width - m.listWidth() - 8
	if w < 10 {
		w = 10
	}
	h := m.height - 5
	if h < 1 {
		h = 1
	}
	return w, h
}

func (m *model) View() string {
	contentW, contentH := m.contentSize()

	list := m.renderList(contentH)
	content := m.renderContent(contentW, contentH)

	listStyle, paneStyle := listBorderStyle, contentBorderStyle
	if m.browsing {
		listStyle = focusedBorderStyle
	} else {
		paneStyle = focusedBorderStyle
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Width(m.listWidth()).Height(contentH+1).Render(list),
		paneStyle.Width(contentW).Height(contentH+1).Render(content),
	)

	var sb strings.Builder
	sb.WriteString(panes)
	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(m.status)
		sb.WriteString("\n")
	}
	sb.WriteString(controlsStyle.Render(m.helpLine()))
	return sb.String()
}

func (m *model) helpLine() string {
	bindings := []key.Binding{keys.Up, keys.Down}
	if m.browsing {
		bindings = append(bindings, keys.Open)
	} else {
		bindings = append(bindings, keys.PrevChapter, keys.NextChapter, keys.ToggleRaw, keys.Back)
	}
	bindings = append(bindings, keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

func (m *model) renderList(height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Library"))
	sb.WriteString("\n")

	if len(m.books) == 0 {
		sb.WriteString("No books found.")
		return sb.String()
	}

	for i, path := range m.books {
		if i >= height-1 {
			break
		}
		name := runewidth.Truncate(filepath.Base(path), m.listWidth()-4, "…")
		line := "  " + name
		if i == m.cursor {
			line = selectedStyle.Render("> " + name)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(annotationStyle.Render("    " + m.lastRead(path)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *model) lastRead(path string) string {
	bm, ok := m.store.Get(path)
	if !ok {
		return "Never"
	}
	return m.lastReadAt(bm.LastRead)
}

func (m *model) lastReadAt(at time.Time) string {
	d := time.Since(at)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (m *model) renderContent(width, height int) string {
	if !m.ctrl.Reading() {
		return "Select a book and press enter."
	}

	pos := m.ctrl.Pos()
	pct := position.Percent(m.ctrl.Content(), width, height, pos.ScrollOffset)
	header := fmt.Sprintf("Content (Chapter %d/%d) — %d%%", pos.Chapter+1, pos.TotalChapters, pct)
	if title := book.ChapterTitle(m.ctrl.Raw()); title != "" {
		header += ": " + title
	}

	lines := m.styledLines(width)
	offset := pos.ScrollOffset
	if max := len(lines) - height; offset > max {
		if max < 0 {
			max = 0
		}
		offset = max
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(runewidth.Truncate(header, width, "…")))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines[offset:end], "\n"))
	return sb.String()
}

// styledLines wraps and styles the current chapter. The result is
// cached: the tokenizer carries emphasis state across lines, so a
// re-style always starts from the top of the chapter.
func (m *model) styledLines(width int) []string {
	gen := m.ctrl.Generation()
	if m.cacheLines != nil && m.cacheGen == gen && m.cacheWidth == width && m.cacheRaw == m.showRaw {
		return m.cacheLines
	}

	text := m.ctrl.Content()
	if m.showRaw {
		text = m.ctrl.Raw()
	}
	wrapped := strings.Split(wordwrap.String(text, width), "\n")

	lines := make([]string, 0, len(wrapped))
	if m.showRaw {
		lines = wrapped
	} else {
		var tok markup.Tokenizer
		for _, line := range wrapped {
			lines = append(lines, renderRuns(tok.Line(line)))
		}
	}

	m.cacheGen = gen
	m.cacheWidth = width
	m.cacheRaw = m.showRaw
	m.cacheLines = lines
	return lines
}

func renderRuns(runs []markup.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		switch {
		case r.Italic && r.Bold:
			sb.WriteString(boldStyle.Italic(true).Render(r.Text))
		case r.Italic:
			sb.WriteString(italicStyle.Render(r.Text))
		case r.Bold:
			sb.WriteString(boldStyle.Render(r.Text))
		default:
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	cfgPath := flag.String("c", config.Path(), "Path to configuration file")
	library := flag.String("d", "", "Book directory (overrides configuration)")
	showVersion := flag.Bool("v", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Bookrat - Terminal E-Book Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  bookrat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  j/k      Scroll (hold to accelerate)\n")
		fmt.Fprintf(os.Stderr, "  h/l      Previous/next chapter\n")
		fmt.Fprintf(os.Stderr, "  enter    Open selected book\n")
		fmt.Fprintf(os.Stderr, "  tab      Switch between library and content\n")
		fmt.Fprintf(os.Stderr, "  r        Toggle raw markup view\n")
		fmt.Fprintf(os.Stderr, "  q        Quit\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("bookrat %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *library != "" {
		cfg.Library = *library
	}

	log, err := cfg.Logging.Prepare()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := bookmark.Load()
	if err != nil {
		log.Warn("bookmark store unavailable", zap.Error(err))
	}

	books, err := book.Discover(cfg.Library)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Cannot read library directory '%s': %v\n", cfg.Library, err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(books, store, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
