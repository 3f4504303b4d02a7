// Package backend puts composited minimap frames on a display: a terminal
// through tcell, or PNG files.
package backend

import (
	"image"
	"sync"

	"github.com/dshills/glance/internal/renderer/core"
)

// EventType identifies the type of display event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize

	// EventClosed is returned once the display is shut down and no more
	// events will arrive.
	EventClosed
)

// Key represents a keyboard key.
type Key int

// Keys the preview reacts to.
const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyCtrlC
)

// Event represents a display event.
type Event struct {
	Type EventType

	Key  Key
	Rune rune

	// MouseX and MouseY are cell coordinates of a primary button press.
	MouseX, MouseY int

	Width, Height int
}

// Backend displays minimap frames.
// Images are drawn two pixel rows per cell, one pixel column per cell.
type Backend interface {
	// Init prepares the display. Must be called before any other method.
	Init() error

	// Shutdown releases the display.
	Shutdown()

	// Size returns the display size in cells.
	Size() (width, height int)

	// Clear fills the display with the background.
	Clear()

	// DrawImage draws img with its top-left pixel at cell (x, y).
	// Translucent pixels are composited over the background.
	DrawImage(img image.Image, x, y int)

	// DrawText draws s starting at cell (x, y).
	DrawText(x, y int, s string, fg, bg core.Color)

	// Show flushes drawing to the display.
	Show()

	// PollEvent blocks until the next event.
	PollEvent() Event

	// PostEvent queues a synthetic event.
	PostEvent(event Event)
}

// NullBackend records what was drawn instead of displaying it.
type NullBackend struct {
	mu     sync.Mutex
	width  int
	height int
	image  image.Image
	text   map[int]string
	shown  int
	events chan Event
}

// NewNullBackend creates a null backend of the given size in cells.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		text:   make(map[int]string),
		events: make(chan Event, 64),
	}
}

func (b *NullBackend) Init() error { return nil }
func (b *NullBackend) Shutdown()   {}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.image = nil
	b.text = make(map[int]string)
}

func (b *NullBackend) DrawImage(img image.Image, x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.image = img
}

func (b *NullBackend) DrawText(x, y int, s string, fg, bg core.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text[y] = s
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shown++
}

// PollEvent returns queued events, then EventClosed once the queue is
// empty.
func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	default:
		return Event{Type: EventClosed}
	}
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
	}
}

// Image returns the last drawn image.
func (b *NullBackend) Image() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.image
}

// Text returns the text last drawn on row y.
func (b *NullBackend) Text(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text[y]
}

// Shown returns the number of Show calls.
func (b *NullBackend) Shown() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

// Resize changes the size and queues a resize event.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width, b.height = width, height
	b.mu.Unlock()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
