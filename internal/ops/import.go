package ops

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/sadopc/treesize/internal/model"
)

// ImportJSON loads a tree from an ncdu-compatible JSON export. Paths ending
// in .zst are decompressed first. Sizes are recomputed from the files so
// the directory-size invariant holds whatever the export claimed, and the
// tree comes back sorted by size with the root expanded.
func ImportJSON(path string) (*model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if Compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("cannot start decompression: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read import file: %w", err)
	}
	return parseExport(data)
}

func parseExport(data []byte) (*model.Node, error) {
	// Top-level array: [major, minor, header, rootDir]
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("invalid ncdu format: expected at least 4 elements, got %d", len(raw))
	}

	root, err := parseDir(raw[3], "")
	if err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}

	root.UpdateSizeRecursive()
	model.SortTreeBySize(root)
	root.Expanded = true
	return root, nil
}

func parseDir(data json.RawMessage, parentPath string) (*model.Node, error) {
	// A directory is an array: [{dir_entry}, child1, child2, ...]
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("directory is not an array: %w", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("empty directory array")
	}

	var entry ncduEntry
	if err := json.Unmarshal(elements[0], &entry); err != nil {
		return nil, fmt.Errorf("cannot parse directory entry: %w", err)
	}
	dirPath := entry.Name
	if parentPath != "" {
		dirPath = filepath.Join(parentPath, entry.Name)
	}
	dir := model.NewDir(dirPath)

	// Remaining elements are children (objects = files, arrays = subdirs)
	for i := 1; i < len(elements); i++ {
		trimmed := trimLeadingWhitespace(elements[i])
		if len(trimmed) == 0 {
			return nil, fmt.Errorf("unexpected child element at index %d in %s", i, dirPath)
		}

		switch trimmed[0] {
		case '[':
			sub, err := parseDir(elements[i], dirPath)
			if err != nil {
				return nil, err
			}
			dir.Children = append(dir.Children, sub)
		case '{':
			var fe ncduEntry
			if err := json.Unmarshal(elements[i], &fe); err != nil {
				return nil, fmt.Errorf("cannot parse file entry: %w", err)
			}
			dir.Children = append(dir.Children, model.NewFile(filepath.Join(dirPath, fe.Name), fe.Asize))
		default:
			return nil, fmt.Errorf("unexpected child element at index %d in %s", i, dirPath)
		}
	}
	return dir, nil
}

func trimLeadingWhitespace(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[i:]
		}
	}
	return nil
}
