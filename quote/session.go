package quote

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/metrics"
)

const DefaultDebounce = 500 * time.Millisecond

// Result is the outcome of one settled input. Quote and Err are both nil
// when the input asks for no quote.
type Result struct {
	Generation uint64
	Intent     Intent
	Quote      *Quote
	Err        error
}

// Session prices an intent that keeps changing. Updates are debounced on the
// trailing edge and only the result of the latest update is published.
type Session struct {
	quoter Quoter
	delay  time.Duration
	l      *logrus.Logger

	ctx  context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	inflight   context.CancelFunc
	results    chan Result
	closed     bool
}

func NewSession(ctx context.Context, quoter Quoter, delay time.Duration, l *logrus.Logger) *Session {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		quoter:  quoter,
		delay:   delay,
		l:       l,
		ctx:     ctx,
		stop:    cancel,
		results: make(chan Result, 1),
	}
}

// Results delivers settled results. Only the newest undelivered result is
// kept.
func (s *Session) Results() <-chan Result {
	return s.results
}

// Update replaces the intent. Any pending or in flight quote for an older
// intent is abandoned.
func (s *Session) Update(in Intent) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.generation
	}

	s.generation++
	gen := s.generation
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(gen, in)
	})
	return gen
}

func (s *Session) run(gen uint64, in Intent) {
	s.mu.Lock()
	if gen != s.generation || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight = cancel
	s.mu.Unlock()
	defer cancel()

	q, err := s.quoter.Quote(ctx, in)
	s.publish(Result{Generation: gen, Intent: in, Quote: q, Err: err})
}

func (s *Session) publish(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Generation != s.generation || s.closed {
		metrics.ObserveStale("quote")
		s.l.WithField("generation", res.Generation).Debug("discarding superseded quote")
		return
	}
	s.inflight = nil
	select {
	case <-s.results:
	default:
	}
	s.results <- res
}

// Close stops the session. No result is published after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.stop()
	close(s.results)
}
