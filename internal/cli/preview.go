package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/minimap"
	"github.com/dshills/glance/internal/renderer/backend"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/highlight"
	"github.com/dshills/glance/internal/renderer/scroll"
)

// ErrNotTerminal is returned by preview when stdout is not a terminal.
var ErrNotTerminal = errors.New("preview needs a terminal")

// previewLineHeight is the simulated editor line height in pixels.
const previewLineHeight = 8

// thumbAlpha is the opacity of the viewport box.
const thumbAlpha = 48

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Browse a minimap in the terminal",
		Long: `Show the minimap of FILE in the terminal, two pixel rows per cell.

The box marks the part of the file an editor window would show.
Scroll with j/k or the arrow keys, page with PgUp/PgDn, jump with g/G,
click the minimap to center the box there, and quit with q.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return ErrNotTerminal
			}
			cfg := opts.cfg
			if cmd.Flags().Changed("theme") {
				cfg.Theme = theme
			}
			th, err := highlight.LookupTheme(cfg.Theme)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])
			doc := document.NewBuffer(string(content))
			engine, err := minimap.NewEngine(minimap.View{
				Document: doc,
				Style:    highlight.NewTokenizer(highlight.DetectLanguage(name, content), th),
				Theme:    th,
			}, cfg.Minimap, minimap.WithLogger(logging.Default()))
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close() }()

			t, err := backend.NewTerminal(th.Background)
			if err != nil {
				return err
			}
			if err := t.Init(); err != nil {
				return err
			}
			defer t.Shutdown()

			return newPreviewer(t, engine, doc, th, name).run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "color theme (built-in or chroma style name)")
	return cmd
}

// previewer drives an Engine from display events, playing the part of an
// editor whose viewport the minimap follows.
type previewer struct {
	be     backend.Backend
	engine *minimap.Engine
	doc    document.Document
	theme  *highlight.Theme
	name   string

	width, height int
	viewportY     int
}

func newPreviewer(be backend.Backend, engine *minimap.Engine, doc document.Document, theme *highlight.Theme, name string) *previewer {
	return &previewer{be: be, engine: engine, doc: doc, theme: theme, name: name}
}

func (p *previewer) run(ctx context.Context) error {
	p.width, p.height = p.be.Size()
	p.scrollTo(0)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := p.draw(ctx); err != nil {
			return err
		}
		if p.handle(p.be.PollEvent()) {
			return nil
		}
	}
}

// panelHeight is the minimap height in pixels; the last row holds the
// status line.
func (p *previewer) panelHeight() int {
	return max(p.height-1, 1) * 2
}

func (p *previewer) contentHeight() int {
	return p.doc.LineCount() * previewLineHeight
}

func (p *previewer) geometry() scroll.Geometry {
	return scroll.Geometry{
		LineHeight:     previewLineHeight,
		ContentHeight:  p.contentHeight(),
		ViewportY:      p.viewportY,
		ViewportHeight: p.panelHeight(),
	}
}

func (p *previewer) scrollTo(y int) {
	limit := max(p.contentHeight()-p.panelHeight(), 0)
	p.viewportY = max(0, min(y, limit))
	p.engine.ViewportChanged(p.geometry())
}

// handle applies one event and reports whether to quit.
func (p *previewer) handle(ev backend.Event) bool {
	page := p.panelHeight()
	switch ev.Type {
	case backend.EventClosed:
		return true

	case backend.EventResize:
		p.width, p.height = ev.Width, ev.Height
		p.scrollTo(p.viewportY)

	case backend.EventMouse:
		target := p.engine.ScrollState().EditorOffsetY(ev.MouseY * 2)
		p.scrollTo(target - page/2)

	case backend.EventKey:
		switch ev.Key {
		case backend.KeyEscape, backend.KeyCtrlC:
			return true
		case backend.KeyDown:
			p.scrollTo(p.viewportY + previewLineHeight)
		case backend.KeyUp:
			p.scrollTo(p.viewportY - previewLineHeight)
		case backend.KeyPageDown:
			p.scrollTo(p.viewportY + page)
		case backend.KeyPageUp:
			p.scrollTo(p.viewportY - page)
		case backend.KeyHome:
			p.scrollTo(0)
		case backend.KeyEnd:
			p.scrollTo(p.contentHeight())
		case backend.KeyRune:
			switch ev.Rune {
			case 'q':
				return true
			case 'j':
				p.scrollTo(p.viewportY + previewLineHeight)
			case 'k':
				p.scrollTo(p.viewportY - previewLineHeight)
			case 'g':
				p.scrollTo(0)
			case 'G':
				p.scrollTo(p.contentHeight())
			}
		}
	}
	return false
}

// topLine returns the first line inside the viewport.
func (p *previewer) topLine() int {
	return p.viewportY / previewLineHeight
}

func (p *previewer) draw(ctx context.Context) error {
	if err := p.engine.Wait(ctx); err != nil {
		return err
	}

	width := max(1, min(p.engine.Config().Width, p.width))
	dst := image.NewNRGBA(image.Rect(0, 0, width, p.panelHeight()))

	top := p.topLine()
	p.engine.Paint(dst, document.EditorState{
		Carets: []document.Caret{{Offset: p.doc.LineStart(top)}},
	})

	y, h := p.engine.ScrollState().Thumb()
	box := image.Rect(0, y, width, y+max(h, 1)).Intersect(dst.Bounds())
	draw.DrawMask(dst, box, image.NewUniform(p.theme.Foreground.NRGBA()), image.Point{},
		image.NewUniform(color.Alpha{A: thumbAlpha}), image.Point{}, draw.Over)

	lines := p.doc.LineCount()
	bottom := min(lines, (p.viewportY+p.panelHeight())/previewLineHeight)
	status := fmt.Sprintf(" %s  %d-%d/%d  j/k scroll  q quit", p.name, top+1, bottom, lines)

	p.be.Clear()
	p.be.DrawImage(dst, 0, 0)
	p.be.DrawText(0, p.height-1, status, p.theme.Foreground, p.theme.Background)
	p.be.Show()
	return nil
}
