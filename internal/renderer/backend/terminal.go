package backend

import (
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/glance/internal/renderer/core"
)

// upperHalf shows the top pixel as foreground and the bottom as background.
const upperHalf = '▀'

// Terminal implements Backend using tcell.
type Terminal struct {
	screen     tcell.Screen
	background core.Color
	mu         sync.Mutex
}

// NewTerminal creates a terminal backend on the controlling terminal.
func NewTerminal(background core.Color) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, background), nil
}

// NewTerminalWithScreen creates a terminal backend on an existing screen,
// such as a tcell.SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen, background core.Color) *Terminal {
	return &Terminal{screen: screen, background: background}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.HideCursor()
	t.screen.SetStyle(tcell.StyleDefault.Background(tcellColor(t.background)))
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

// DrawImage draws img as half-block cells. Cells outside the screen and
// pixel rows outside the image are skipped or filled with the background.
func (t *Terminal) DrawImage(img image.Image, x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := img.Bounds()
	width, height := t.screen.Size()
	rows := (b.Dy() + 1) / 2

	for cy := 0; cy < rows && y+cy < height; cy++ {
		if y+cy < 0 {
			continue
		}
		for cx := 0; cx < b.Dx() && x+cx < width; cx++ {
			if x+cx < 0 {
				continue
			}
			px := b.Min.X + cx
			top := t.pixel(img, px, b.Min.Y+2*cy)
			bottom := t.background
			if py := b.Min.Y + 2*cy + 1; py < b.Max.Y {
				bottom = t.pixel(img, px, py)
			}
			style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bottom))
			t.screen.SetContent(x+cx, y+cy, upperHalf, nil, style)
		}
	}
}

// pixel returns the image pixel composited over the background.
func (t *Terminal) pixel(img image.Image, x, y int) core.Color {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	switch c.A {
	case 0:
		return t.background
	case 255:
		return core.ColorFromRGB(c.R, c.G, c.B)
	}
	return t.background.Blend(core.ColorFromRGB(c.R, c.G, c.B), float64(c.A)/255)
}

// DrawText draws s one grapheme cluster at a time, advancing by each
// cluster's display width.
func (t *Terminal) DrawText(x, y int, s string, fg, bg core.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style := tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg.Or(t.background)))
	width, _ := t.screen.Size()

	g := uniseg.NewGraphemes(s)
	for g.Next() && x < width {
		runes := g.Runes()
		w := g.Width()
		if w == 0 {
			continue
		}
		if x >= 0 {
			t.screen.SetContent(x, y, runes[0], runes[1:], style)
		}
		x += w
	}
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) PollEvent() Event {
	return convertEvent(t.screen.PollEvent())
}

// PostEvent queues key and resize events. Other events are dropped.
func (t *Terminal) PostEvent(event Event) {
	switch event.Type {
	case EventKey:
		_ = t.screen.PostEvent(tcell.NewEventKey(convertToTcellKey(event.Key), event.Rune, tcell.ModNone))
	case EventResize:
		_ = t.screen.PostEvent(tcell.NewEventResize(event.Width, event.Height))
	}
}

func tcellColor(c core.Color) tcell.Color {
	if c.IsDefault() {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// convertTcellColor converts a tcell color back to a core color.
func convertTcellColor(tc tcell.Color) core.Color {
	if tc == tcell.ColorDefault {
		return core.ColorDefault
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b)) // RGB is 0-255 per channel
}

func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case nil:
		return Event{Type: EventClosed}

	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e.Key()), Rune: e.Rune()}

	case *tcell.EventMouse:
		if e.Buttons()&tcell.Button1 == 0 {
			return Event{Type: EventNone}
		}
		x, y := e.Position()
		return Event{Type: EventMouse, MouseX: x, MouseY: y}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	default:
		return Event{Type: EventNone}
	}
}

var keyMap = map[tcell.Key]Key{
	tcell.KeyRune:   KeyRune,
	tcell.KeyEscape: KeyEscape,
	tcell.KeyEnter:  KeyEnter,
	tcell.KeyUp:     KeyUp,
	tcell.KeyDown:   KeyDown,
	tcell.KeyPgUp:   KeyPageUp,
	tcell.KeyPgDn:   KeyPageDown,
	tcell.KeyHome:   KeyHome,
	tcell.KeyEnd:    KeyEnd,
	tcell.KeyCtrlC:  KeyCtrlC,
}

func convertKey(k tcell.Key) Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return KeyNone
}

func convertToTcellKey(k Key) tcell.Key {
	for tk, key := range keyMap {
		if key == k {
			return tk
		}
	}
	return tcell.KeyNUL
}
