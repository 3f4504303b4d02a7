package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/glance/internal/logging"
)

// Scheduler errors.
var (
	// ErrAlreadyRunning is returned by Start on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrNotRunning is returned when the scheduler is not running.
	ErrNotRunning = errors.New("scheduler not running")

	// ErrBusy is returned by RunNow while a pass is in flight.
	ErrBusy = errors.New("pass in flight")
)

// Pass repaints the minimap. It must return ctx.Err() promptly once ctx is
// cancelled and must not publish anything in that case.
type Pass func(ctx context.Context) error

// Stats reports scheduler activity.
type Stats struct {
	Requested uint64 // rebuild requests received
	Coalesced uint64 // requests folded into a pending rerun
	Started   uint64 // passes started
	Completed uint64 // passes that returned nil
	Failed    uint64 // passes that returned an error
	Preempted uint64 // passes cancelled by Preempt and restarted
}

// message kinds handled by the scheduler loop.
type (
	requestMsg struct{}
	preemptMsg struct{}
	runNowMsg  struct{ reply chan error }
	quiesceMsg struct{ done chan struct{} }
	doneMsg    struct{ err error }
)

// Scheduler runs at most one Pass at a time.
//
// It is a two-state machine, Idle or Running{dirty}, owned by a single loop
// goroutine and driven by messages. A request while Running only sets
// dirty; when the pass completes with dirty set, exactly one more pass
// starts. A preempted pass is discarded: the cache-clear hook runs and the
// pass is started again.
type Scheduler struct {
	pass      Pass
	onPreempt func()
	logger    *log.Logger

	mu      sync.Mutex // protects start/stop
	msgs    chan any
	stopped chan struct{}
	done    chan struct{}
	running atomic.Bool
	idle    atomic.Bool

	requested atomic.Uint64
	coalesced atomic.Uint64
	started   atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	preempted atomic.Uint64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithPreemptHook sets a function called after a pass is preempted, before
// it is restarted. It runs on the scheduler goroutine and must not call
// back into the scheduler.
func WithPreemptHook(fn func()) SchedulerOption {
	return func(s *Scheduler) {
		s.onPreempt = fn
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a stopped scheduler for pass.
func NewScheduler(pass Pass, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		pass:   pass,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithComponent(s.logger, "scheduler")
	s.idle.Store(true)
	return s
}

// Start launches the scheduler loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}
	s.msgs = make(chan any)
	s.stopped = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.loop(s.msgs, s.stopped, s.done)
	return nil
}

// Stop cancels any pass in flight and waits for the loop to exit or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running.Store(false)
	close(s.stopped)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send delivers msg to the loop.
func (s *Scheduler) send(msg any) error {
	s.mu.Lock()
	msgs, stopped := s.msgs, s.stopped
	running := s.running.Load()
	s.mu.Unlock()
	if !running {
		return ErrNotRunning
	}

	select {
	case msgs <- msg:
		return nil
	case <-stopped:
		return ErrNotRunning
	}
}

// Request asks for a rebuild. It never waits for the pass.
func (s *Scheduler) Request() error {
	return s.send(requestMsg{})
}

// Preempt cancels the pass in flight, if any. The pass is discarded and
// restarted.
func (s *Scheduler) Preempt() error {
	return s.send(preemptMsg{})
}

// RunNow runs a pass on the scheduler and waits for it, provided nothing
// is in flight. Otherwise it marks the scheduler dirty and returns ErrBusy.
func (s *Scheduler) RunNow(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := s.send(runNowMsg{reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quiesce waits until the scheduler is idle with nothing pending.
func (s *Scheduler) Quiesce(ctx context.Context) error {
	done := make(chan struct{})
	if err := s.send(quiesceMsg{done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Idle reports whether no pass is in flight.
func (s *Scheduler) Idle() bool {
	return s.idle.Load()
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Requested: s.requested.Load(),
		Coalesced: s.coalesced.Load(),
		Started:   s.started.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
		Preempted: s.preempted.Load(),
	}
}

// loop owns the scheduler state.
func (s *Scheduler) loop(msgs <-chan any, stopped <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var (
		running    bool
		dirty      bool
		preempting bool
		stopping   bool
		cancel     context.CancelFunc
		reply      chan error
		waiters    []chan struct{}
		passDone   = make(chan doneMsg, 1)
	)

	start := func() {
		ctx, c := context.WithCancel(context.Background())
		cancel = c
		running = true
		s.idle.Store(false)
		s.started.Add(1)
		go func() {
			begin := time.Now()
			err := s.pass(ctx)
			s.logger.Debug("pass finished", logging.FieldDuration, time.Since(begin), logging.FieldError, err)
			passDone <- doneMsg{err: err}
		}()
	}

	settle := func() {
		running = false
		s.idle.Store(true)
		for _, w := range waiters {
			close(w)
		}
		waiters = nil
	}

	for {
		if stopping && !running {
			settle()
			return
		}

		select {
		case <-stopped:
			stopped = nil
			stopping = true
			if running {
				cancel()
			}

		case msg := <-msgs:
			switch m := msg.(type) {
			case requestMsg:
				s.requested.Add(1)
				if stopping {
					continue
				}
				if running {
					if dirty {
						s.coalesced.Add(1)
					}
					dirty = true
					continue
				}
				start()

			case preemptMsg:
				if running && !preempting {
					preempting = true
					cancel()
				}

			case runNowMsg:
				if stopping {
					m.reply <- ErrNotRunning
					continue
				}
				if running {
					dirty = true
					m.reply <- ErrBusy
					continue
				}
				reply = m.reply
				start()

			case quiesceMsg:
				if !running {
					close(m.done)
					continue
				}
				waiters = append(waiters, m.done)
			}

		case d := <-passDone:
			cancel()
			if preempting && !stopping {
				// The restart covers any request made meanwhile.
				preempting = false
				s.preempted.Add(1)
				s.logger.Debug("pass preempted, restarting")
				if s.onPreempt != nil {
					s.onPreempt()
				}
				dirty = false
				start()
				continue
			}
			preempting = false

			if !stopping {
				if d.err != nil {
					s.failed.Add(1)
				} else {
					s.completed.Add(1)
				}
			}
			if reply != nil {
				reply <- d.err
				reply = nil
			}
			if stopping {
				running = false
				continue
			}

			if dirty {
				dirty = false
				start()
				continue
			}
			settle()
		}
	}
}
