package minimap

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/glance/internal/config"
	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/renderer/raster"
)

// Registry manages the engines of all open views.
type Registry struct {
	mu      sync.RWMutex
	cfg     config.Minimap
	opts    options
	logger  *log.Logger
	engines map[ViewID]*Engine
	order   []ViewID
	closed  bool
}

// NewRegistry creates a registry whose engines use cfg.
func NewRegistry(cfg config.Minimap, opts ...Option) (*Registry, error) {
	if _, err := raster.New(cfg.Engine); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Registry{
		cfg:     cfg,
		opts:    o,
		logger:  logging.WithComponent(o.logger, "minimap"),
		engines: make(map[ViewID]*Engine),
	}, nil
}

// Open starts an engine for view and returns its ID.
func (r *Registry) Open(view View) (ViewID, *Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ViewID{}, nil, ErrClosed
	}
	id := NewViewID()
	e, err := newEngine(id, view, r.cfg, r.opts)
	if err != nil {
		return ViewID{}, nil, err
	}
	r.engines[id] = e
	r.order = append(r.order, id)
	r.logger.Debug("view opened", logging.FieldView, id.String())
	return id, e, nil
}

// Get returns the engine for id.
func (r *Registry) Get(id ViewID) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[id]
	return e, ok
}

// Views returns the open view IDs in open order.
func (r *Registry) Views() []ViewID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ViewID, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// Close stops and forgets the engine for id.
func (r *Registry) Close(id ViewID) error {
	e, ok := r.remove(id)
	if !ok {
		return ErrUnknownView
	}
	r.logger.Debug("view closed", logging.FieldView, id.String())
	return e.Close()
}

func (r *Registry) remove(id ViewID) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.engines[id]
	if !ok {
		return nil, false
	}
	delete(r.engines, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, true
}

// CloseAll stops every engine and refuses further Opens. Engines still
// winding down when ctx expires are reported in the returned error.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	engines := make([]*Engine, 0, len(r.order))
	for _, id := range r.order {
		engines = append(engines, r.engines[id])
	}
	r.engines = make(map[ViewID]*Engine)
	r.order = nil
	r.mu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, e := range engines {
		wg.Add(1)
		go func(e *Engine) {
			defer wg.Done()
			if err := e.shutdown(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(e)
	}
	wg.Wait()
	return errors.Join(errs...)
}
