package minimap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/glance/internal/config"
	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/renderer/cache"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/fold"
	"github.com/dshills/glance/internal/renderer/highlight"
	"github.com/dshills/glance/internal/renderer/linemap"
	"github.com/dshills/glance/internal/renderer/overlay"
	"github.com/dshills/glance/internal/renderer/raster"
	"github.com/dshills/glance/internal/renderer/scroll"
)

// closeTimeout bounds how long Close waits for a pass to wind down.
const closeTimeout = 2 * time.Second

type options struct {
	logger *log.Logger
	theme  *overlay.Theme
}

// Option configures an Engine or Registry.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOverlayTheme overrides the overlay colors.
func WithOverlayTheme(theme overlay.Theme) Option {
	return func(o *options) {
		o.theme = &theme
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Engine renders the minimap of one view.
type Engine struct {
	id         ViewID
	view       View
	theme      *highlight.Theme
	cfg        config.Minimap
	logger     *log.Logger
	rasterizer raster.Rasterizer
	cache      *cache.ImageCache
	scheduler  *cache.Scheduler
	painter    *overlay.Painter

	mu          sync.Mutex
	scale       float64
	geometry    scroll.Geometry
	hasGeometry bool
	scroll      scroll.State
	lines       *linemap.Visual
	height      int
	closed      bool
}

// NewEngine creates and starts an engine for view.
func NewEngine(view View, cfg config.Minimap, opts ...Option) (*Engine, error) {
	return newEngine(NewViewID(), view, cfg, buildOptions(opts))
}

func newEngine(id ViewID, view View, cfg config.Minimap, o options) (*Engine, error) {
	if view.Document == nil {
		return nil, ErrNoDocument
	}
	r, err := raster.New(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if cfg.PixelsPerLine <= 0 {
		cfg.PixelsPerLine = config.Default().Minimap.PixelsPerLine
	}
	cfg.PixelsPerLine = min(cfg.PixelsPerLine, 4)

	theme := view.Theme
	if theme == nil {
		theme = highlight.DefaultTheme()
	}

	logger := o.logger.With(logging.FieldView, id.String())
	e := &Engine{
		id:         id,
		view:       view,
		theme:      theme,
		cfg:        cfg,
		logger:     logger,
		rasterizer: r,
		cache:      cache.NewImageCache(cfg.Width, cfg.Slack(), cache.WithLogger(logger)),
		scale:      1,
	}

	e.painter = overlay.NewPainter(cfg.PixelsPerLine, cfg.Width)
	e.painter.MinGap = cfg.MarkupMinGap
	e.painter.MinSeverity = cfg.Severity()
	e.painter.HideOriginalScrollBar = cfg.HideOriginalScrollBar
	if o.theme != nil {
		e.painter.Theme = *o.theme
	} else {
		e.painter.Theme.Selection = theme.Selection.Or(e.painter.Theme.Selection)
		e.painter.Theme.Caret = theme.Caret.Or(e.painter.Theme.Caret)
	}

	e.scheduler = cache.NewScheduler(e.pass,
		cache.WithPreemptHook(e.onPreempt),
		cache.WithSchedulerLogger(logger),
	)
	if err := e.scheduler.Start(); err != nil {
		return nil, err
	}
	return e, nil
}

// ID returns the engine's view ID.
func (e *Engine) ID() ViewID {
	return e.id
}

// Config returns the minimap settings in effect.
func (e *Engine) Config() config.Minimap {
	return e.cfg
}

// Stats returns the scheduler counters.
func (e *Engine) Stats() cache.Stats {
	return e.scheduler.Stats()
}

// RequestRebuild asks for the minimap to be repainted. It never waits.
func (e *Engine) RequestRebuild() {
	if err := e.scheduler.Request(); err != nil && !errors.Is(err, cache.ErrNotRunning) {
		e.logger.Debug("rebuild request dropped", logging.FieldError, err)
	}
}

// TextChanged must be called after every document edit. A pass reading
// the old text is cancelled and restarted.
func (e *Engine) TextChanged() {
	if err := e.scheduler.Preempt(); err != nil && !errors.Is(err, cache.ErrNotRunning) {
		e.logger.Debug("preempt dropped", logging.FieldError, err)
	}
	e.RequestRebuild()
}

// FoldsChanged must be called when folds are added, removed or toggled.
func (e *Engine) FoldsChanged() {
	e.RequestRebuild()
}

// MarkupChanged must be called when highlights or diagnostics change.
func (e *Engine) MarkupChanged() {
	e.RequestRebuild()
}

// ViewportChanged records new editor geometry. Scroll state is updated
// at once; a rebuild is only requested when no image is available.
func (e *Engine) ViewportChanged(g scroll.Geometry) {
	e.mu.Lock()
	e.geometry = g
	e.hasGeometry = true
	e.updateScrollLocked()
	scale := e.scale
	e.mu.Unlock()

	if e.cache.Acquire(scale).State() != cache.StatePublished {
		e.RequestRebuild()
	}
}

// SetScale sets the device scale factor. Images are cached per scale.
func (e *Engine) SetScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	e.mu.Lock()
	changed := e.scale != scale
	e.scale = scale
	e.mu.Unlock()

	if changed {
		e.logger.Debug("scale changed", logging.FieldScale, scale)
		e.RequestRebuild()
	}
}

// Scale returns the device scale factor.
func (e *Engine) Scale() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale
}

// Evict drops the published image, as the host does under memory
// pressure. The next CurrentImage rebuilds it.
func (e *Engine) Evict() {
	e.cache.Evict()
}

// CurrentImage returns the full minimap bitmap, or nil when none is
// available yet. It never waits on a pass in flight. An empty cache
// requests a rebuild; an evicted image is rebuilt synchronously when the
// scheduler is idle.
func (e *Engine) CurrentImage() image.Image {
	entry := e.cache.Acquire(e.Scale())
	switch entry.State() {
	case cache.StatePublished:
		if buf := entry.Image(); buf != nil {
			return buf.Image()
		}
	case cache.StateEvicted:
		err := e.scheduler.RunNow(context.Background())
		if err != nil {
			if !errors.Is(err, cache.ErrBusy) {
				e.logger.Debug("rebuild after eviction failed", logging.FieldError, err)
			}
			return nil
		}
		if buf := entry.Image(); buf != nil {
			return buf.Image()
		}
	default:
		e.RequestRebuild()
	}
	return nil
}

// Wait blocks until no pass is running or pending.
func (e *Engine) Wait(ctx context.Context) error {
	return e.scheduler.Quiesce(ctx)
}

// ScrollState returns the current scroll state.
func (e *Engine) ScrollState() scroll.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scroll
}

// Height returns the document height of the last published image in
// pixel rows.
func (e *Engine) Height() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.height
}

// Frame returns what the painters need for the current state. ok is false
// until the first pass has completed.
func (e *Engine) Frame() (fr overlay.Frame, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lines == nil {
		return overlay.Frame{}, false
	}
	return overlay.Frame{Scroll: e.scroll, Lines: e.lines}, true
}

// PaintMinimap copies the visible slice of the bitmap to the top of dst.
// It reports whether anything was drawn.
func (e *Engine) PaintMinimap(dst draw.Image) bool {
	img := e.CurrentImage()
	if img == nil {
		return false
	}
	st := e.ScrollState()
	if st.DrawHeight <= 0 {
		return false
	}
	b := dst.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+st.DrawHeight)
	draw.Draw(dst, r, img, image.Pt(0, st.VisibleStart), draw.Over)
	return true
}

// Paint draws the bitmap and every overlay layer, returning the caret
// rows drawn.
func (e *Engine) Paint(dst draw.Image, state document.EditorState) []overlay.CaretRow {
	e.PaintMinimap(dst)
	fr, ok := e.Frame()
	if !ok {
		return nil
	}
	return e.painter.Paint(dst, fr, state, e.view.markupSet())
}

// PaintVCS draws VCS change bars.
func (e *Engine) PaintVCS(dst draw.Image, state document.EditorState) {
	if fr, ok := e.Frame(); ok {
		e.painter.PaintVCS(dst, fr, state)
	}
}

// PaintSelection draws the selection.
func (e *Engine) PaintSelection(dst draw.Image, sel document.Selection) {
	if fr, ok := e.Frame(); ok {
		e.painter.PaintSelection(dst, fr, sel)
	}
}

// PaintCarets draws caret rows and returns them.
func (e *Engine) PaintCarets(dst draw.Image, carets []document.Caret) []overlay.CaretRow {
	if fr, ok := e.Frame(); ok {
		return e.painter.PaintCarets(dst, fr, carets)
	}
	return nil
}

// PaintOtherHighlights draws non-diagnostic markup.
func (e *Engine) PaintOtherHighlights(dst draw.Image, carets []overlay.CaretRow) {
	if fr, ok := e.Frame(); ok {
		e.painter.PaintOtherHighlights(dst, fr, e.view.markupSet(), carets)
	}
}

// PaintErrorStripes draws diagnostic markup.
func (e *Engine) PaintErrorStripes(dst draw.Image, carets []overlay.CaretRow) {
	if fr, ok := e.Frame(); ok {
		e.painter.PaintErrorStripes(dst, fr, e.view.markupSet(), carets)
	}
}

// Close stops the scheduler. Closing twice is a no-op.
func (e *Engine) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return e.shutdown(ctx)
}

func (e *Engine) shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	if err := e.scheduler.Stop(ctx); err != nil && !errors.Is(err, cache.ErrNotRunning) {
		return fmt.Errorf("stopping view %s: %w", e.id, err)
	}
	return nil
}

// onPreempt runs on the scheduler goroutine after a cancelled pass.
func (e *Engine) onPreempt() {
	if entry := e.cache.Current(); entry != nil {
		entry.Discard()
	}
	if e.view.Markup != nil {
		e.view.Markup.ClearCache()
	}
}

// pass is the scheduler's unit of work: snapshot, rasterize, publish.
func (e *Engine) pass(ctx context.Context) error {
	e.mu.Lock()
	scale := e.scale
	degenerate := e.hasGeometry && e.geometry.LineHeight <= 0
	e.mu.Unlock()

	if degenerate {
		e.logger.Debug("skipping pass", logging.FieldError, scroll.ErrDegenerateGeometry)
		return scroll.ErrDegenerateGeometry
	}

	snap, err := e.snapshot()
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) {
			e.logger.Debug("skipping pass", logging.FieldError, err)
		} else {
			e.logger.Warn("snapshot failed", logging.FieldError, err)
		}
		return err
	}

	begin := time.Now()
	entry := e.cache.Acquire(scale)
	height := e.rasterizer.Height(snap)
	buf := entry.Back(height)
	if err := e.rasterizer.Paint(ctx, snap, buf); err != nil {
		entry.Discard()
		if errors.Is(err, raster.ErrSpanOutOfBounds) {
			e.logger.Warn("style spans out of bounds, keeping previous image", logging.FieldError, err)
		}
		return err
	}
	entry.Publish(buf)

	model := e.view.Visual
	if model == nil {
		model = snap.Layout()
	}
	lines := linemap.NewVisual(model, snap.Folds)

	e.mu.Lock()
	e.lines = lines
	e.height = height
	e.updateScrollLocked()
	e.mu.Unlock()

	e.logger.Debug("minimap rebuilt",
		logging.FieldHeight, height,
		logging.FieldEngine, e.cfg.Engine,
		logging.FieldDuration, time.Since(begin))
	return nil
}

// snapshot copies everything a pass reads from the host models.
func (e *Engine) snapshot() (*raster.Snapshot, error) {
	doc := e.view.Document
	if doc.LineCount() == 0 {
		return nil, ErrEmptyDocument
	}
	text := doc.Text()

	snap := &raster.Snapshot{
		Text:                  text,
		DefaultForeground:     e.theme.Foreground,
		PlaceholderForeground: e.theme.Foreground.Blend(e.theme.Background, 0.5),
		PixelsPerLine:         e.cfg.PixelsPerLine,
		Clean:                 e.cfg.Clean,
	}

	style := e.view.Style
	if style == nil {
		style = document.PlainStyle{}
	}
	spans, err := style.StyleSpans(text)
	if err != nil {
		return nil, fmt.Errorf("style spans: %w", err)
	}
	snap.Spans = spans

	if e.view.Folds != nil {
		snap.Folds = fold.NewIndex(e.view.Folds.FoldRegions())
	}
	if e.view.SoftWraps != nil {
		snap.Wraps = document.NewSoftWrapLookup(e.view.SoftWraps)
	}
	if set := e.view.markupSet(); set.Len() > 0 {
		snap.Resolver = set
	}
	return snap, nil
}

// updateScrollLocked recomputes the scroll state. e.mu must be held.
func (e *Engine) updateScrollLocked() {
	if !e.hasGeometry {
		return
	}
	st, err := scroll.Compute(e.geometry, e.cfg.PixelsPerLine)
	if err != nil {
		return
	}
	e.scroll = st
}
