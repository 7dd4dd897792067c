// Package scanner walks a directory tree, computing recursive sizes while
// publishing progress and honouring cancellation.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sadopc/treesize/internal/disk"
	"github.com/sadopc/treesize/internal/model"
)

// DiskResolver reports the volume a path lives on.
type DiskResolver interface {
	Resolve(path string) disk.Info
}

// Engine runs scans. It holds no per-scan state and may run several scans
// concurrently, each with its own Progress.
type Engine struct {
	opts     Options
	resolver DiskResolver
	log      *slog.Logger
}

// NewEngine creates an engine. A nil resolver treats every path as living
// on an unknown volume; a nil logger discards logs.
func NewEngine(opts Options, resolver DiskResolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{opts: opts.normalized(), resolver: resolver, log: logger}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// Run scans root and returns its outcome. Progress is reset and then kept
// current while the scan runs; pass nil if nobody polls it.
func (e *Engine) Run(ctx context.Context, root string, progress *Progress) Outcome {
	if progress == nil {
		progress = NewProgress()
	}
	start := time.Now()
	progress.reset(root, start)

	absPath, err := filepath.Abs(root)
	if err != nil {
		err = fmt.Errorf("resolve %q: %w", root, err)
		return e.fail(progress, start, "Error: "+err.Error(), err)
	}

	// Stat follows a symlinked root; entries below it are never followed.
	info, err := os.Stat(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return e.fail(progress, start, MsgNotFound, fmt.Errorf("%w: %s", ErrNotFound, absPath))
	}

	if ctx.Err() != nil {
		return e.cancelled(progress, start, &counters{})
	}

	var diskInfo disk.Info
	if e.resolver != nil {
		diskInfo = e.resolver.Resolve(absPath)
	}
	parallel := e.opts.parallelFor(diskInfo.PreferParallel())
	threads := 1
	msg := MsgSequential
	if parallel {
		threads = e.opts.Workers
		msg = MsgParallel
	}
	progress.update(func(s *Snapshot) {
		s.Root = absPath
		s.DiskSize = diskInfo.TotalBytes
		s.DiskType = diskInfo.Label()
		s.ThreadCount = threads
		s.Parallel = parallel
		s.Message = msg
	})
	e.log.Info("scan started",
		"path", absPath,
		"parallel", parallel,
		"workers", threads,
		"disk", diskInfo.Label(),
		"capacity", diskInfo.TotalBytes,
	)

	c := &counters{}
	rep := startReporter(progress, c, e.opts.ReportInterval)

	var rootNode *model.Node
	if err == nil && !info.IsDir() {
		if info.Mode().IsRegular() {
			rootNode = model.NewFile(absPath, info.Size())
			c.files.Add(1)
			c.bytes.Add(info.Size())
		} else {
			rootNode = model.NewFile(absPath, 0)
		}
	} else {
		w := &walker{
			ctx:           ctx,
			parallelDepth: e.opts.ParallelDepth,
			counters:      c,
			log:           e.log,
		}
		if parallel {
			// The calling goroutine is itself a worker.
			w.sem = semaphore.NewWeighted(int64(threads - 1))
		}
		rootNode = w.scanDir(absPath, 0)
	}

	rep.stop()

	if rootNode == nil || ctx.Err() != nil {
		return e.cancelled(progress, start, c)
	}

	progress.setMessage(MsgSorting)
	model.SortTreeBySize(rootNode)
	rootNode.Expanded = true

	elapsed := time.Since(start)
	progress.setMessage(fmt.Sprintf("Complete in %.2fs", elapsed.Seconds()))
	out := outcomeFrom(StatusComplete, c, elapsed)
	out.Root = rootNode
	e.log.Info("scan complete",
		"path", absPath,
		"files", out.Files,
		"dirs", out.Dirs,
		"bytes", out.Bytes,
		"errors", out.Errors,
		"elapsed", elapsed,
	)
	return out
}

func (e *Engine) cancelled(progress *Progress, start time.Time, c *counters) Outcome {
	progress.setMessage(MsgCancelled)
	e.log.Info("scan cancelled")
	return outcomeFrom(StatusCancelled, c, time.Since(start))
}

func (e *Engine) fail(progress *Progress, start time.Time, msg string, err error) Outcome {
	progress.setMessage(msg)
	e.log.Warn("scan failed", "error", err)
	return Outcome{Status: StatusFailed, Err: err, Elapsed: time.Since(start)}
}

func outcomeFrom(status Status, c *counters, elapsed time.Duration) Outcome {
	return Outcome{
		Status:  status,
		Files:   c.files.Load(),
		Dirs:    c.dirs.Load(),
		Bytes:   c.bytes.Load(),
		Errors:  c.errors.Load(),
		Elapsed: elapsed,
	}
}
