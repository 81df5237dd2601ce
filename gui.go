//go:build gui

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
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

type model struct {
	log   *zap.Logger
	store *bookmark.Store
	ctrl  *position.Controller

	books   []string
	src     book.Source
	showRaw bool
}

func lastRead(store *bookmark.Store, path string) string {
	bm, ok := store.Get(path)
	if !ok {
		return "Never"
	}
	d := time.Since(bm.LastRead)
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

// contentSegments styles the chapter text for a RichText widget. The
// tokenizer carries emphasis state across lines, so the whole chapter
// is styled in one pass from the top.
func contentSegments(text string) []widget.RichTextSegment {
	var segments []widget.RichTextSegment
	var tok markup.Tokenizer
	for _, line := range strings.Split(text, "\n") {
		runs := tok.Line(line)
		if len(runs) == 0 {
			segments = append(segments, &widget.TextSegment{Text: ""})
			continue
		}
		for i, r := range runs {
			seg := &widget.TextSegment{
				Text: r.Text,
				Style: widget.RichTextStyle{
					Inline:    i < len(runs)-1,
					TextStyle: fyne.TextStyle{Italic: r.Italic, Bold: r.Bold},
				},
			}
			segments = append(segments, seg)
		}
	}
	return segments
}

func main() {
	cfgPath := flag.String("c", config.Path(), "Path to configuration file")
	library := flag.String("d", "", "Book directory (overrides configuration)")
	showVersion := flag.Bool("v", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Bookrat - E-Book Reader (GUI)\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  bookrat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  ←/→      Previous/next chapter\n")
		fmt.Fprintf(os.Stderr, "  R        Toggle raw markup view\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
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

	m := &model{
		log:   log,
		store: store,
		ctrl:  position.NewController(store, log),
		books: books,
	}

	a := app.New()
	w := a.NewWindow("bookrat")

	statusLabel := widget.NewLabel("Select a book.")
	statusLabel.Alignment = fyne.TextAlignCenter

	content := widget.NewRichTextWithText("")
	content.Wrapping = fyne.TextWrapWord
	contentScroll := container.NewVScroll(content)

	updateDisplay := func() {
		if !m.ctrl.Reading() {
			return
		}
		text := m.ctrl.Content()
		if m.showRaw {
			content.Segments = []widget.RichTextSegment{
				&widget.TextSegment{Text: m.ctrl.Raw()},
			}
		} else {
			content.Segments = contentSegments(text)
		}
		content.Refresh()

		pos := m.ctrl.Pos()
		status := fmt.Sprintf("Chapter %d/%d", pos.Chapter+1, pos.TotalChapters)
		if title := book.ChapterTitle(m.ctrl.Raw()); title != "" {
			status += ": " + title
		}
		statusLabel.SetText(status)
	}

	bookList := widget.NewList(
		func() int { return len(m.books) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel("Title"),
				widget.NewLabel("Last read"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			path := m.books[id]
			vbox := obj.(*fyne.Container)
			titleLabel := vbox.Objects[0].(*widget.Label)
			readLabel := vbox.Objects[1].(*widget.Label)

			titleLabel.SetText(filepath.Base(path))
			titleLabel.TextStyle.Bold = true
			readLabel.SetText(lastRead(m.store, path))
		},
	)

	bookList.OnSelected = func(id widget.ListItemID) {
		path := m.books[id]
		src, err := book.Open(path)
		if err != nil {
			statusLabel.SetText(fmt.Sprintf("Cannot open %s: %v", filepath.Base(path), err))
			m.log.Error("failed to open book", zap.String("path", path), zap.Error(err))
			return
		}
		if m.src != nil {
			m.src.Close()
		}
		m.src = src
		m.ctrl.Open(path, src)
		contentScroll.ScrollToTop()
		updateDisplay()
	}

	listPanel := container.NewBorder(
		widget.NewLabel("Library"),
		nil, nil, nil,
		bookList,
	)
	readingPanel := container.NewBorder(
		statusLabel,
		nil, nil, nil,
		contentScroll,
	)

	split := container.NewHSplit(listPanel, readingPanel)
	split.Offset = 0.3

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyLeft:
			m.ctrl.PrevChapter()
			contentScroll.ScrollToTop()
			updateDisplay()

		case fyne.KeyRight:
			m.ctrl.NextChapter()
			contentScroll.ScrollToTop()
			updateDisplay()

		case fyne.KeyR:
			m.showRaw = !m.showRaw
			updateDisplay()

		case fyne.KeyQ:
			a.Quit()
		}
	})

	w.SetOnClosed(func() {
		if m.src != nil {
			m.src.Close()
		}
		if err := m.store.Save(); err != nil {
			m.log.Error("failed to save bookmarks", zap.Error(err))
		}
	})

	w.Resize(fyne.NewSize(900, 600))
	w.SetContent(split)
	w.ShowAndRun()
}
