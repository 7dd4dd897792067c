package ops

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sadopc/treesize/internal/model"
)

// ncdu-compatible JSON format:
// [1, 0, {"progname":"treesize","progver":"1.0","timestamp":1234567890},
//   [{"name":"/path","asize":300},
//     {"name":"a.txt","asize":100},
//     [{"name":"sub","asize":200},
//       {"name":"b.txt","asize":200}
//     ]
//   ]
// ]

const progName = "treesize"

type ncduHeader struct {
	Progname  string `json:"progname"`
	Progver   string `json:"progver"`
	Timestamp int64  `json:"timestamp"`
}

type ncduEntry struct {
	Name  string `json:"name"`
	Asize int64  `json:"asize"`
}

// errWriter wraps an io.Writer and captures the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// Compressed reports whether path names a zstd-compressed export.
func Compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

// ExportJSON exports the tree to ncdu-compatible JSON format.
// "-" writes to stdout. Paths ending in .zst are zstd-compressed.
// For file targets, writes to a temp file first and atomically renames
// on success, so a partial file is never left behind on error.
func ExportJSON(root *model.Node, path string, version string) (retErr error) {
	if path == "-" {
		return exportToWriter(root, os.Stdout, version)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".treesize-export-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if Compressed(path) {
		enc, err := zstd.NewWriter(tmp)
		if err != nil {
			return fmt.Errorf("cannot start compression: %w", err)
		}
		if err := exportToWriter(root, enc, version); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else if err := exportToWriter(root, tmp, version); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace export file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

func exportToWriter(root *model.Node, out io.Writer, version string) error {
	bw := bufio.NewWriterSize(out, 64*1024)
	ew := &errWriter{w: bw}

	ew.WriteString("[1, 0, ")
	if version == "" {
		version = "dev"
	}
	headerJSON, err := json.Marshal(ncduHeader{
		Progname:  progName,
		Progver:   version,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, _ = ew.Write(headerJSON)
	ew.WriteString(",\n")

	if root.IsFile {
		// ncdu always opens with a directory; wrap a lone file.
		ew.WriteString("[")
		writeEntry(ew, filepath.Dir(root.Path), root.Size)
		ew.WriteString(",\n")
		writeEntry(ew, root.Name, root.Size)
		ew.WriteString("]")
	} else {
		writeDir(ew, root, root.Path)
	}

	ew.WriteString("\n]\n")
	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

func writeEntry(ew *errWriter, name string, size int64) {
	data, err := json.Marshal(ncduEntry{Name: name, Asize: size})
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)
}

// writeDir writes dir as an ncdu directory array. The root carries its full
// path as name; everything below carries its base name.
func writeDir(ew *errWriter, dir *model.Node, name string) {
	if ew.err != nil {
		return
	}

	ew.WriteString("[")
	writeEntry(ew, name, dir.Size)

	for _, child := range dir.Children {
		if ew.err != nil {
			return
		}
		ew.WriteString(",\n")
		if child.IsFile {
			writeEntry(ew, child.Name, child.Size)
		} else {
			writeDir(ew, child, child.Name)
		}
	}

	ew.WriteString("]")
}
