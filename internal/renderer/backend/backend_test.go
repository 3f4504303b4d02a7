package backend

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/glance/internal/renderer/core"
)

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(sim, core.ColorBlack)
	require.NoError(t, term.Init())
	sim.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	return term, sim
}

func cellAt(sim tcell.SimulationScreen, x, y int) (rune, core.Color, core.Color) {
	r, _, style, _ := sim.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	fg, bg, _ := style.Decompose()
	return r, convertTcellColor(fg), convertTcellColor(bg)
}

func TestTerminalDrawImageHalfBlocks(t *testing.T) {
	term, sim := newSimTerminal(t, 10, 5)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 2, color.NRGBA{G: 255, A: 255})

	term.DrawImage(img, 1, 1)
	term.Show()

	r, fg, bg := cellAt(sim, 1, 1)
	assert.Equal(t, upperHalf, r)
	assert.Equal(t, core.ColorRed, fg)
	assert.Equal(t, core.ColorBlue, bg)

	// Transparent pixels show the background.
	_, fg, _ = cellAt(sim, 2, 1)
	assert.Equal(t, core.ColorBlack, fg)

	// The odd last row has no bottom pixel.
	_, fg, bg = cellAt(sim, 2, 2)
	assert.Equal(t, core.ColorGreen, fg)
	assert.Equal(t, core.ColorBlack, bg)
}

func TestTerminalDrawImageClipped(t *testing.T) {
	term, sim := newSimTerminal(t, 2, 1)

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: 255, A: 255})
	}
	assert.NotPanics(t, func() {
		term.DrawImage(img, -1, 0)
		term.Show()
	})
	_, fg, _ := cellAt(sim, 0, 0)
	assert.Equal(t, core.ColorRed, fg)
}

func TestTerminalBlendsTranslucentPixels(t *testing.T) {
	term, sim := newSimTerminal(t, 2, 1)

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	term.DrawImage(img, 0, 0)
	term.Show()

	_, fg, _ := cellAt(sim, 0, 0)
	assert.Greater(t, fg.R, uint8(0))
	assert.Less(t, fg.R, uint8(255))
}

func TestTerminalDrawText(t *testing.T) {
	term, sim := newSimTerminal(t, 10, 1)

	term.DrawText(0, 0, "a界b", core.ColorWhite, core.ColorDefault)
	term.Show()

	r, fg, bg := cellAt(sim, 0, 0)
	assert.Equal(t, 'a', r)
	assert.Equal(t, core.ColorWhite, fg)
	assert.Equal(t, core.ColorBlack, bg)

	r, _, _ = cellAt(sim, 1, 0)
	assert.Equal(t, '界', r)
	r, _, _ = cellAt(sim, 3, 0)
	assert.Equal(t, 'b', r, "wide cluster takes two cells")
}

func TestTerminalEvents(t *testing.T) {
	term, _ := newSimTerminal(t, 10, 5)

	term.PostEvent(Event{Type: EventKey, Key: KeyPageDown})
	ev := term.PollEvent()
	// The simulation screen reports its initial size first.
	for ev.Type == EventResize {
		ev = term.PollEvent()
	}
	assert.Equal(t, EventKey, ev.Type)
	assert.Equal(t, KeyPageDown, ev.Key)

	term.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'q'})
	ev = term.PollEvent()
	assert.Equal(t, KeyRune, ev.Key)
	assert.Equal(t, 'q', ev.Rune)
}

func TestConvertKey(t *testing.T) {
	assert.Equal(t, KeyUp, convertKey(tcell.KeyUp))
	assert.Equal(t, KeyNone, convertKey(tcell.KeyF12))
	assert.Equal(t, tcell.KeyPgUp, convertToTcellKey(KeyPageUp))
	assert.Equal(t, tcell.KeyNUL, convertToTcellKey(KeyNone))
}

func TestNullBackend(t *testing.T) {
	b := NewNullBackend(80, 24)
	require.NoError(t, b.Init())

	w, h := b.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	b.DrawImage(img, 0, 0)
	b.DrawText(0, 3, "status", core.ColorWhite, core.ColorDefault)
	b.Show()
	assert.Same(t, img, b.Image())
	assert.Equal(t, "status", b.Text(3))
	assert.Equal(t, 1, b.Shown())

	b.Resize(40, 12)
	ev := b.PollEvent()
	assert.Equal(t, Event{Type: EventResize, Width: 40, Height: 12}, ev)
	assert.Equal(t, EventClosed, b.PollEvent().Type)

	b.Clear()
	assert.Nil(t, b.Image())
}

func TestFlattenAndScale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	flat := Flatten(img, core.ColorBlue)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, flat.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, flat.NRGBAAt(1, 1))

	scaled := Scale(flat, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 4), scaled.Bounds())
	assert.Same(t, image.Image(flat), Scale(flat, 1))

	wide := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	assert.Equal(t, 20, FitWidth(wide, 20).Bounds().Dx())
	assert.Equal(t, 10, FitWidth(wide, 20).Bounds().Dy())
	assert.Same(t, image.Image(wide), FitWidth(wide, 200))
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{G: 255, A: 255})

	require.NoError(t, WritePNG(path, img, core.ColorBlack, 2))

	got, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), got.Bounds())

	assert.ErrorIs(t, WritePNG(path, nil, core.ColorBlack, 1), ErrEmptyImage)
}
