package scanner

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Mode selects the traversal strategy.
type Mode int

const (
	// ModeAuto picks parallel traversal on solid-state media and
	// sequential traversal otherwise.
	ModeAuto Mode = iota
	ModeParallel
	ModeSequential
)

func (m Mode) String() string {
	switch m {
	case ModeParallel:
		return "parallel"
	case ModeSequential:
		return "sequential"
	default:
		return "auto"
	}
}

// ParseMode parses "auto", "parallel" or "sequential". An empty string is auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "parallel":
		return ModeParallel, nil
	case "sequential", "single":
		return ModeSequential, nil
	}
	return ModeAuto, fmt.Errorf("unknown scan mode %q (want auto, parallel or sequential)", s)
}

const (
	// DefaultParallelDepth fans out at depths 0 and 1.
	DefaultParallelDepth = 2
	// DefaultReportInterval is how often counters are copied into the snapshot.
	DefaultReportInterval = 200 * time.Millisecond
)

// Options configures the scan engine.
type Options struct {
	// Mode forces a strategy; ModeAuto decides from the disk kind.
	Mode Mode
	// ParallelDepth is the number of tree levels whose entries are fanned
	// out across workers. Deeper levels are scanned sequentially.
	ParallelDepth int
	// Workers bounds concurrent directory reads in parallel mode (0 = auto).
	Workers int
	// ReportInterval is the progress snapshot refresh period (0 = default).
	ReportInterval time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Mode:           ModeAuto,
		ParallelDepth:  DefaultParallelDepth,
		Workers:        runtime.GOMAXPROCS(0),
		ReportInterval: DefaultReportInterval,
	}
}

func (o Options) WithMode(m Mode) Options {
	o.Mode = m
	return o
}

func (o Options) WithParallelDepth(depth int) Options {
	o.ParallelDepth = depth
	return o
}

func (o Options) WithWorkers(n int) Options {
	o.Workers = n
	return o
}

func (o Options) WithReportInterval(d time.Duration) Options {
	o.ReportInterval = d
	return o
}

// normalized fills zero values with defaults.
func (o Options) normalized() Options {
	if o.ParallelDepth < 0 {
		o.ParallelDepth = 0
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ReportInterval <= 0 {
		o.ReportInterval = DefaultReportInterval
	}
	return o
}

// parallelFor resolves the strategy for a volume.
func (o Options) parallelFor(preferParallel bool) bool {
	switch o.Mode {
	case ModeParallel:
		return true
	case ModeSequential:
		return false
	default:
		return preferParallel
	}
}
