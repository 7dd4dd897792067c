//go:build windows

package ops

import (
	"os"
	"path/filepath"
)

// deleteResolvedPath removes base inside dir. RemoveAll does not follow
// reparse points, so a linked directory is unlinked rather than emptied.
func deleteResolvedPath(dir, base string) error {
	target := filepath.Join(dir, base)
	info, err := os.Lstat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return os.Remove(target)
	}
	return os.RemoveAll(target)
}
