// Package cache owns the published minimap bitmap and schedules the passes
// that repaint it.
//
// Readers (the paint path) only ever see a fully painted buffer, swapped in
// atomically by Publish. The writer paints into a private back buffer; the
// previously published buffer is held as a shadow until its replacement is
// published, then released.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/renderer/raster"
)

// State describes what an Entry can currently hand to readers.
type State int

const (
	// StateEmpty means nothing has been published yet.
	StateEmpty State = iota

	// StatePublished means a complete image is available.
	StatePublished

	// StateEvicted means an image was published and later reclaimed.
	StateEvicted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePublished:
		return "published"
	case StateEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Entry is the bitmap for one device scale.
type Entry struct {
	scale  float64
	width  int
	slack  int
	logger *log.Logger

	published atomic.Pointer[raster.Buffer]
	evicted   atomic.Bool

	// Writer side; only touched by the goroutine running a pass.
	mu     sync.Mutex
	shadow *raster.Buffer
	height int
}

// Scale returns the device scale the entry was created for.
func (e *Entry) Scale() float64 {
	return e.scale
}

// State reports the entry's state.
func (e *Entry) State() State {
	switch {
	case e.published.Load() != nil:
		return StatePublished
	case e.evicted.Load():
		return StateEvicted
	default:
		return StateEmpty
	}
}

// Image returns the last published buffer, or nil when there is none.
// It never blocks.
func (e *Entry) Image() *raster.Buffer {
	return e.published.Load()
}

// Back returns a cleared buffer of at least rows + slack pixel rows for a
// pass to paint into. The buffer height never shrinks across passes. The
// currently published buffer is held as the shadow until Publish.
func (e *Entry) Back(rows int) *raster.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.shadow = e.published.Load()
	if rows > e.height {
		e.height = rows + e.slack
		e.logger.Debug("created new image", logging.FieldWidth, e.width, logging.FieldHeight, e.height, logging.FieldScale, e.scale)
	}
	return raster.NewBuffer(e.width, e.height)
}

// Publish makes buf the image returned to readers and releases the shadow.
func (e *Entry) Publish(buf *raster.Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.published.Store(buf)
	e.evicted.Store(false)
	e.shadow = nil
}

// Shadow returns the buffer held while a pass is in progress.
func (e *Entry) Shadow() *raster.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shadow
}

// Discard abandons a pass; the previously published image stays.
func (e *Entry) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shadow = nil
}

// Evict drops the published image, as when memory is reclaimed.
func (e *Entry) Evict() {
	if e.published.Swap(nil) != nil {
		e.evicted.Store(true)
	}
}

// ImageCache holds the single live Entry, keyed by device scale. An entry
// painted for one scale is useless at another and is replaced.
type ImageCache struct {
	mu     sync.Mutex
	width  int
	slack  int
	entry  *Entry
	logger *log.Logger
}

// Option configures an ImageCache.
type Option func(*ImageCache)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *ImageCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewImageCache creates a cache for bitmaps width pixels wide. slack is the
// number of spare rows allocated whenever a buffer has to grow.
func NewImageCache(width, slack int, opts ...Option) *ImageCache {
	c := &ImageCache{
		width:  max(width, 1),
		slack:  max(slack, 0),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, "cache")
	return c
}

// Acquire returns the entry for scale, creating it when absent or when the
// scale changed. It never returns nil.
func (c *ImageCache) Acquire(scale float64) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && c.entry.scale == scale {
		return c.entry
	}
	if c.entry != nil {
		c.logger.Debug("scale changed, dropping image", "from", c.entry.scale, "to", scale)
	}
	c.entry = &Entry{
		scale:  scale,
		width:  c.width,
		slack:  c.slack,
		logger: c.logger,
	}
	return c.entry
}

// Current returns the live entry without creating one.
func (c *ImageCache) Current() *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry
}

// Evict reclaims the live entry's image.
func (c *ImageCache) Evict() {
	if e := c.Current(); e != nil {
		e.Evict()
	}
}

// Reset drops the live entry. Used when the width or slack changes.
func (c *ImageCache) Reset(width, slack int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = max(width, 1)
	c.slack = max(slack, 0)
	c.entry = nil
}

// Width returns the bitmap width.
func (c *ImageCache) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}
