package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sadopc/treesize/internal/model"
)

// ErrNotFound is returned when the scan root does not exist.
var ErrNotFound = errors.New("path does not exist")

// Status is the state of a scan outcome.
type Status int

const (
	StatusRunning Status = iota
	StatusComplete
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "running"
	}
}

// Outcome is the terminal result of one scan.
// Root is set only when Status is StatusComplete, Err only when StatusFailed.
type Outcome struct {
	Status  Status
	Root    *model.Node
	Err     error
	Files   int64
	Dirs    int64
	Bytes   int64
	Errors  int64
	Elapsed time.Duration
}

// Future holds an Outcome that is written exactly once.
type Future struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve stores o if no outcome has been stored yet.
func (f *Future) resolve(o Outcome) bool {
	stored := false
	f.once.Do(func() {
		f.outcome = o
		stored = true
		close(f.done)
	})
	return stored
}

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// TryGet returns the outcome without blocking.
func (f *Future) TryGet() (Outcome, bool) {
	select {
	case <-f.done:
		return f.outcome, true
	default:
		return Outcome{Status: StatusRunning}, false
	}
}

// Wait blocks until the outcome is available or ctx is done.
func (f *Future) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-f.done:
		return f.outcome, nil
	case <-ctx.Done():
		return Outcome{Status: StatusRunning}, ctx.Err()
	}
}
