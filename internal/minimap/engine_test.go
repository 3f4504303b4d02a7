package minimap

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/glance/internal/config"
	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/renderer/core"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/markup"
	"github.com/dshills/glance/internal/renderer/overlay"
	"github.com/dshills/glance/internal/renderer/raster"
	"github.com/dshills/glance/internal/renderer/scroll"
)

func testConfig() config.Minimap {
	cfg := config.Default().Minimap
	cfg.Width = 20
	return cfg
}

func newTestEngine(t *testing.T, view View) *Engine {
	t.Helper()
	e, err := NewEngine(view, testConfig(), WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
}

type emptyDoc struct{}

func (emptyDoc) Text() []rune       { return nil }
func (emptyDoc) Len() int           { return 0 }
func (emptyDoc) LineCount() int     { return 0 }
func (emptyDoc) LineNumber(int) int { return 0 }
func (emptyDoc) LineStart(int) int  { return 0 }

type flakyStyle struct {
	bad atomic.Bool
}

func (s *flakyStyle) StyleSpans(text []rune) ([]document.StyleSpan, error) {
	if s.bad.Load() {
		return []document.StyleSpan{{Start: 0, End: len(text) + 5}}, nil
	}
	return document.PlainStyle{}.StyleSpans(text)
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(View{}, testConfig())
	assert.ErrorIs(t, err, ErrNoDocument)

	cfg := testConfig()
	cfg.Engine = "turbo"
	_, err = NewEngine(View{Document: document.NewBuffer("x")}, cfg)
	assert.ErrorIs(t, err, raster.ErrUnknownEngine)
}

func TestCurrentImageRequestsRebuild(t *testing.T) {
	e := newTestEngine(t, View{Document: document.NewBuffer("package main\n\nfunc main() {}\n")})

	assert.Nil(t, e.CurrentImage(), "nothing painted yet")
	waitIdle(t, e)

	img := e.CurrentImage()
	require.NotNil(t, img)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.GreaterOrEqual(t, img.Bounds().Dy(), e.Height())
	assert.Equal(t, (4+1)*2, e.Height())
	assert.Equal(t, uint64(1), e.Stats().Completed)
}

func TestRebuildIsIdempotent(t *testing.T) {
	e := newTestEngine(t, View{Document: document.NewBuffer("one\ntwo\nthree")})

	e.RequestRebuild()
	waitIdle(t, e)
	first := image.NewNRGBA(e.CurrentImage().Bounds())
	copy(first.Pix, e.CurrentImage().(*image.NRGBA).Pix)

	e.RequestRebuild()
	waitIdle(t, e)
	assert.Equal(t, first.Pix, e.CurrentImage().(*image.NRGBA).Pix)
}

func TestEvictedImageRebuildsSynchronously(t *testing.T) {
	e := newTestEngine(t, View{Document: document.NewBuffer("abc\ndef\n")})
	e.RequestRebuild()
	waitIdle(t, e)
	require.NotNil(t, e.CurrentImage())
	started := e.Stats().Started

	e.Evict()
	img := e.CurrentImage()
	require.NotNil(t, img)
	assert.Equal(t, started+1, e.Stats().Started)
}

func TestOutOfBoundsSpansKeepPreviousImage(t *testing.T) {
	style := &flakyStyle{}
	e := newTestEngine(t, View{Document: document.NewBuffer("abc\ndef\n"), Style: style})
	e.RequestRebuild()
	waitIdle(t, e)
	before := e.CurrentImage()
	require.NotNil(t, before)

	style.bad.Store(true)
	e.RequestRebuild()
	waitIdle(t, e)

	assert.Same(t, before, e.CurrentImage())
	assert.Equal(t, uint64(1), e.Stats().Failed)
}

func TestEmptyDocumentSkipsPass(t *testing.T) {
	e := newTestEngine(t, View{Document: emptyDoc{}})
	e.RequestRebuild()
	waitIdle(t, e)

	assert.Nil(t, e.CurrentImage())
	waitIdle(t, e)
	assert.GreaterOrEqual(t, e.Stats().Failed, uint64(1))
	assert.Zero(t, e.Stats().Completed)
}

func TestDegenerateGeometrySkipsPass(t *testing.T) {
	e := newTestEngine(t, View{Document: document.NewBuffer("abc")})
	e.ViewportChanged(scroll.Geometry{LineHeight: 0, ContentHeight: 10, ViewportHeight: 10})
	waitIdle(t, e)
	assert.Zero(t, e.Stats().Completed)
	assert.Equal(t, scroll.State{}, e.ScrollState())
}

func TestTextChangedRebuilds(t *testing.T) {
	buf := document.NewBuffer("a")
	e := newTestEngine(t, View{Document: buf})
	e.RequestRebuild()
	waitIdle(t, e)
	short := e.Height()

	buf.SetText(strings.Repeat("line\n", 50))
	e.TextChanged()
	waitIdle(t, e)
	assert.Greater(t, e.Height(), short)
	assert.Equal(t, (51+1)*2, e.Height())
}

func TestFoldsChangedShrinksHeight(t *testing.T) {
	buf := document.NewBuffer(strings.Repeat("line\n", 10))
	folds := document.NewFoldModel()
	e := newTestEngine(t, View{Document: buf, Folds: folds})
	e.RequestRebuild()
	waitIdle(t, e)
	full := e.Height()

	folds.Add(document.FoldRegion{Start: 4, End: 29, Collapsed: true, Placeholder: "..."})
	e.FoldsChanged()
	waitIdle(t, e)
	assert.Less(t, e.Height(), full)
}

func TestSetScaleKeysCache(t *testing.T) {
	e := newTestEngine(t, View{Document: document.NewBuffer("abc")})
	e.RequestRebuild()
	waitIdle(t, e)

	e.SetScale(2)
	assert.Equal(t, 2.0, e.Scale())
	waitIdle(t, e)
	require.NotNil(t, e.CurrentImage())
	assert.Equal(t, 2.0, e.cache.Current().Scale())

	e.SetScale(-1)
	assert.Equal(t, 1.0, e.Scale())
}

func TestViewportChangedComputesScroll(t *testing.T) {
	e := newTestEngine(t, View{Document: document.NewBuffer(strings.Repeat("x\n", 99))})
	e.ViewportChanged(scroll.Geometry{LineHeight: 10, ContentHeight: 1000, ViewportHeight: 50})
	waitIdle(t, e)

	st := e.ScrollState()
	assert.InDelta(t, 0.2, st.Scale, 1e-9)
	assert.Equal(t, 200, st.DocumentHeight)
	assert.Equal(t, 50, st.VisibleHeight)
	assert.Equal(t, 0, st.VisibleStart)
	assert.NotNil(t, e.CurrentImage(), "an unpainted view requests a rebuild")
}

func paintFixture(t *testing.T, mk *markup.Model) (*Engine, *image.NRGBA) {
	t.Helper()
	view := View{Document: document.NewBuffer(strings.Repeat("aaaa\n", 10))}
	if mk != nil {
		view.Markup = mk
	}
	e := newTestEngine(t, view)
	e.ViewportChanged(scroll.Geometry{LineHeight: 2, ContentHeight: 20, ViewportHeight: 40})
	waitIdle(t, e)
	return e, image.NewNRGBA(image.Rect(0, 0, 20, 40))
}

func TestPaintBeforeFirstPassDrawsNothing(t *testing.T) {
	e := newTestEngine(t, View{Document: emptyDoc{}})
	dst := image.NewNRGBA(image.Rect(0, 0, 20, 40))
	assert.Nil(t, e.Paint(dst, document.EditorState{Carets: []document.Caret{{Offset: 0}}}))
	assert.Nil(t, e.PaintCarets(dst, []document.Caret{{Offset: 0}}))
	_, ok := e.Frame()
	assert.False(t, ok)
}

func TestPaintAllLayers(t *testing.T) {
	mk := markup.NewModel()
	mk.Add(markup.Markup{Start: 15, End: 17, StripeColor: core.ColorRed, Severity: core.SeverityError})
	e, dst := paintFixture(t, mk)

	rows := e.Paint(dst, document.EditorState{Carets: []document.Caret{{Offset: 10}}})
	assert.Equal(t, []overlay.CaretRow{{Y: 4, Column: 0}}, rows)
	assert.Equal(t, uint8(255), dst.NRGBAAt(0, 4).A)

	// Error on line 3 is widened to the minimum gap, past the text.
	assert.Equal(t, color.NRGBA{R: 255, A: 204}, dst.NRGBAAt(14, 6))
	assert.Zero(t, dst.NRGBAAt(15, 6).A)
}

func TestPaintMinimapCopiesVisibleSlice(t *testing.T) {
	e, dst := paintFixture(t, nil)
	require.True(t, e.PaintMinimap(dst))
	src := e.CurrentImage().(*image.NRGBA)
	require.NotZero(t, src.NRGBAAt(0, 1).A)
	for _, p := range []image.Point{{0, 0}, {0, 1}, {2, 3}, {10, 10}} {
		assert.Equal(t, src.NRGBAAt(p.X, p.Y).A, dst.NRGBAAt(p.X, p.Y).A, p)
	}
}

func TestIndividualPainters(t *testing.T) {
	mk := markup.NewModel()
	mk.Add(markup.Markup{Start: 20, End: 22, StripeColor: core.ColorGreen, Layer: 1})
	e, dst := paintFixture(t, mk)

	e.PaintVCS(dst, document.EditorState{Changes: []document.ChangeRange{{Line1: 1, Line2: 2, Type: document.ChangeInserted}}})
	assert.NotZero(t, dst.NRGBAAt(0, 2).A)

	e.PaintSelection(dst, document.Selection{Start: 30, End: 32})
	assert.NotZero(t, dst.NRGBAAt(0, 12).A)

	carets := e.PaintCarets(dst, []document.Caret{{Offset: 35}})
	require.Len(t, carets, 1)
	e.PaintOtherHighlights(dst, carets)
	px := dst.NRGBAAt(0, 8)
	assert.Greater(t, px.G, px.R)
	e.PaintErrorStripes(dst, carets)
}

func TestCloseIsIdempotent(t *testing.T) {
	e, err := NewEngine(View{Document: document.NewBuffer("x")}, testConfig(), WithLogger(logging.Discard()))
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	// Hooks on a closed engine are dropped quietly.
	e.RequestRebuild()
	e.TextChanged()
	assert.Nil(t, e.CurrentImage())
}
