// Package sweep batches reports of chats that disappeared from the sidebar
// and removes them from every folder in one pass.
package sweep

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultDelay is the coalescing window used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// ApplyFunc removes a batch of normalized URLs and returns how many entries
// were dropped.
type ApplyFunc func(ctx context.Context, nurls []string) (int, error)

// Result describes one flushed batch.
type Result struct {
	Batch   []string
	Removed int
	Err     error
}

// Params holds the parameters for New.
type Params struct {
	Delay  time.Duration
	Apply  ApplyFunc
	OnDone func(Result)
	Logger *log.Logger
}

// Sweeper coalesces removal reports within a delay window into a single
// apply call.
type Sweeper struct {
	delay  time.Duration
	apply  ApplyFunc
	onDone func(Result)
	logger *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	order   []string
	stopped bool
	flushMu sync.Mutex
}

// New creates a Sweeper.
func New(p Params) *Sweeper {
	s := &Sweeper{
		delay:   p.Delay,
		apply:   p.Apply,
		onDone:  p.OnDone,
		logger:  p.Logger,
		pending: make(map[string]struct{}),
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Report queues nurls for removal and arms the timer if it is not running.
func (s *Sweeper) Report(nurls ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	for _, n := range nurls {
		if n == "" {
			continue
		}
		if _, ok := s.pending[n]; !ok {
			s.pending[n] = struct{}{}
			s.order = append(s.order, n)
		}
	}
	if len(s.pending) > 0 && s.timer == nil {
		s.timer = time.AfterFunc(s.delay, func() {
			s.Flush(context.Background())
		})
	}
}

// Pending returns the number of queued URLs.
func (s *Sweeper) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush applies the queued batch now. It returns the zero Result when there
// is nothing to apply.
func (s *Sweeper) Flush(ctx context.Context) Result {
	// Batches are applied one at a time, in report order.
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := s.order
	s.order = nil
	s.pending = make(map[string]struct{})
	s.mu.Unlock()

	if len(batch) == 0 || s.apply == nil {
		return Result{}
	}

	removed, err := s.apply(ctx, batch)
	r := Result{Batch: batch, Removed: removed, Err: err}
	if err != nil {
		s.logger.Error("sweep failed", "batch", len(batch), "err", err)
	} else {
		s.logger.Info("sweep applied", "batch", len(batch), "removed", removed)
	}
	if s.onDone != nil {
		s.onDone(r)
	}
	return r
}

// Stop disarms the timer and drops queued reports. Later reports are ignored.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = make(map[string]struct{})
	s.order = nil
	s.stopped = true
}
