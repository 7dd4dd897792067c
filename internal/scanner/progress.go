package scanner

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status messages shown while a scan moves through its phases.
const (
	MsgStarting   = "Starting scan..."
	MsgParallel   = "Scanning (parallel mode)..."
	MsgSequential = "Scanning (single-threaded mode)..."
	MsgSorting    = "Sorting..."
	MsgCancelled  = "Scan cancelled"
	MsgNotFound   = "Error: path does not exist"
)

// Snapshot reports scanning progress.
type Snapshot struct {
	// Root is the path being scanned.
	Root string
	// FilesScanned is the total files scanned so far.
	FilesScanned int64
	// DirsScanned is the total directories scanned so far, root excluded.
	DirsScanned int64
	// BytesScanned is the total file bytes found so far.
	BytesScanned int64
	// Errors counts directories and entries that could not be read.
	Errors int64
	// DiskSize is the capacity of the volume being scanned, 0 if unknown.
	DiskSize uint64
	// DiskType is the media label of that volume.
	DiskType string
	// ThreadCount is the number of workers reading directories.
	ThreadCount int
	// Parallel is true when the parallel strategy was selected.
	Parallel bool
	// Message is the current phase in human-readable form.
	Message string
	// StartTime is when the scan began.
	StartTime time.Time
	// Duration is elapsed time at the last refresh.
	Duration time.Duration
}

// ItemsPerSecond returns the scan rate.
func (s Snapshot) ItemsPerSecond() float64 {
	if s.Duration.Seconds() == 0 {
		return 0
	}
	return float64(s.FilesScanned+s.DirsScanned) / s.Duration.Seconds()
}

// BytesPerSecond returns the scan throughput.
func (s Snapshot) BytesPerSecond() float64 {
	if s.Duration.Seconds() == 0 {
		return 0
	}
	return float64(s.BytesScanned) / s.Duration.Seconds()
}

// Percent returns scanned bytes as a share of disk capacity in [0, 100].
// It is 0 when the capacity is unknown.
func (s Snapshot) Percent() float64 {
	if s.DiskSize == 0 {
		return 0
	}
	p := float64(s.BytesScanned) / float64(s.DiskSize) * 100
	if p > 100 {
		return 100
	}
	return p
}

// counters are the live tallies written by walker goroutines.
type counters struct {
	files  atomic.Int64
	dirs   atomic.Int64
	bytes  atomic.Int64
	errors atomic.Int64
}

// Progress is the lock-guarded snapshot shared between the engine, its
// reporter and any number of pollers.
type Progress struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewProgress returns an empty Progress.
func NewProgress() *Progress {
	return &Progress{}
}

// Load returns the current snapshot, waiting for the lock if needed.
func (p *Progress) Load() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// TryLoad returns the current snapshot without blocking. ok is false when
// a writer holds the lock; callers keep showing their previous value.
func (p *Progress) TryLoad() (snap Snapshot, ok bool) {
	if !p.mu.TryLock() {
		return Snapshot{}, false
	}
	defer p.mu.Unlock()
	return p.snap, true
}

func (p *Progress) update(fn func(*Snapshot)) {
	p.mu.Lock()
	fn(&p.snap)
	p.mu.Unlock()
}

// reset starts a fresh snapshot for a new scan.
func (p *Progress) reset(root string, start time.Time) {
	p.update(func(s *Snapshot) {
		*s = Snapshot{Root: root, Message: MsgStarting, StartTime: start}
	})
}

func (p *Progress) setMessage(msg string) {
	p.update(func(s *Snapshot) { s.Message = msg })
}

// publish copies the counters into the snapshot.
func (p *Progress) publish(c *counters) {
	files, dirs, bytes, errs := c.files.Load(), c.dirs.Load(), c.bytes.Load(), c.errors.Load()
	p.update(func(s *Snapshot) {
		s.FilesScanned = files
		s.DirsScanned = dirs
		s.BytesScanned = bytes
		s.Errors = errs
		s.Duration = time.Since(s.StartTime)
	})
}
