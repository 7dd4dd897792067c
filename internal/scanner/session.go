package scanner

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoScan is returned when waiting on a session that never started a scan.
var ErrNoScan = errors.New("no scan has been started")

// Session runs one scan at a time in the background for an interactive
// front end that polls instead of blocking. It is safe for concurrent use.
type Session struct {
	engine *Engine

	mu       sync.Mutex
	progress *Progress
	future   *Future
	cancel   context.CancelFunc
	taken    bool
}

// NewSession creates a Session that scans with engine.
func NewSession(engine *Engine) *Session {
	return &Session{engine: engine, progress: NewProgress()}
}

// Start launches a scan of root and returns immediately. A scan already in
// flight is cancelled; its outcome is never delivered by this session.
// Cancelling parent cancels the scan as well.
func (s *Session) Start(parent context.Context, root string) *Future {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	progress := NewProgress()
	progress.reset(root, time.Now())
	future := newFuture()

	s.progress = progress
	s.future = future
	s.cancel = cancel
	s.taken = false

	engine := s.engine
	go func() {
		defer cancel()
		future.resolve(engine.Run(ctx, root, progress))
	}()
	return future
}

// Cancel asks the running scan to stop at its next checkpoint. It is a
// no-op when nothing is running.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Running reports whether a scan has been started and has not finished.
func (s *Session) Running() bool {
	s.mu.Lock()
	f := s.future
	s.mu.Unlock()
	if f == nil {
		return false
	}
	_, done := f.TryGet()
	return !done
}

// PollProgress returns the current snapshot without blocking. ok is false
// when the scan side holds the lock at that instant.
func (s *Session) PollProgress() (Snapshot, bool) {
	s.mu.Lock()
	p := s.progress
	s.mu.Unlock()
	return p.TryLoad()
}

// Progress returns the live progress of the current scan.
func (s *Session) Progress() *Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// PollOutcome takes the terminal outcome of the current scan. It returns
// false while the scan runs and after the outcome has been taken once.
func (s *Session) PollOutcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.future == nil || s.taken {
		return Outcome{Status: StatusRunning}, false
	}
	out, ok := s.future.TryGet()
	if ok {
		s.taken = true
	}
	return out, ok
}

// Wait blocks until the current scan finishes or ctx is done.
func (s *Session) Wait(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	f := s.future
	s.mu.Unlock()
	if f == nil {
		return Outcome{}, ErrNoScan
	}
	return f.Wait(ctx)
}
