package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/sadopc/treesize/internal/model"
)

// walker builds a size tree below one root. In parallel mode sem bounds the
// number of extra goroutines; nil sem means strictly sequential descent.
type walker struct {
	ctx           context.Context
	sem           *semaphore.Weighted
	parallelDepth int
	counters      *counters
	log           *slog.Logger
}

// pendingDir is a subdirectory being scanned by another goroutine.
type pendingDir struct {
	node *model.Node
}

// scanDir returns the node for dirPath, or nil if the scan was cancelled
// before the subtree finished. An unreadable directory yields an empty node.
func (w *walker) scanDir(dirPath string, depth int) *model.Node {
	if w.ctx.Err() != nil {
		return nil
	}

	node := model.NewDir(dirPath)
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		w.counters.errors.Add(1)
		w.log.Debug("unreadable directory", "path", dirPath, "error", err)
		return w.produced(node, depth)
	}

	fanOut := w.sem != nil && depth < w.parallelDepth
	var (
		wg      sync.WaitGroup
		pending []*pendingDir
	)

	// Hand a subdirectory to a new goroutine when a worker slot is free,
	// otherwise scan it in the current goroutine.
	spawnScan := func(path string) {
		if fanOut && w.sem.TryAcquire(1) {
			p := &pendingDir{}
			pending = append(pending, p)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer w.sem.Release(1)
				p.node = w.scanDir(path, depth+1)
			}()
			return
		}
		if child := w.scanDir(path, depth+1); child != nil {
			node.AddChild(child)
		}
	}

	for _, entry := range entries {
		if w.ctx.Err() != nil {
			break
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		typ := entry.Type()

		switch {
		case typ.IsDir():
			spawnScan(fullPath)
		case typ.IsRegular():
			info, err := entry.Info()
			if err != nil {
				w.counters.errors.Add(1)
				w.log.Debug("unreadable entry", "path", fullPath, "error", err)
				continue
			}
			node.AddChild(model.NewFile(fullPath, info.Size()))
			w.counters.files.Add(1)
			w.counters.bytes.Add(info.Size())
		default:
			// Symlinks, devices, sockets and pipes are neither followed
			// nor counted.
		}
	}

	wg.Wait()
	for _, p := range pending {
		if p.node != nil {
			node.AddChild(p.node)
		}
	}

	if w.ctx.Err() != nil {
		return nil
	}
	return w.produced(node, depth)
}

// produced counts a finished directory node. The root is not counted.
func (w *walker) produced(node *model.Node, depth int) *model.Node {
	if depth > 0 {
		w.counters.dirs.Add(1)
	}
	return node
}
