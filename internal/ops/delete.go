package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sadopc/treesize/internal/model"
)

// Delete removes a file or directory at the given path.
// For directories, it removes the entire subtree.
// rootPath constrains deletion to descendants of the scan root, and the
// parent directory must still resolve inside the root, so a symlinked
// directory can never redirect the delete elsewhere.
func Delete(path string, rootPath string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("cannot resolve root %s: %w", rootPath, err)
	}

	if !isStrictlyWithin(absRoot, absPath) {
		return fmt.Errorf("refusing to delete %s: outside scan root %s", absPath, absRoot)
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("cannot resolve root %s: %w", absRoot, err)
	}
	parent, base := filepath.Dir(absPath), filepath.Base(absPath)
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", parent, err)
	}
	if realParent != realRoot && !isStrictlyWithin(realRoot, realParent) {
		return fmt.Errorf("refusing to delete %s: parent resolves outside scan root %s", absPath, absRoot)
	}

	if _, err := os.Lstat(filepath.Join(realParent, base)); err != nil {
		return fmt.Errorf("cannot access %s: %w", absPath, err)
	}
	return deleteResolvedPath(realParent, base)
}

// Remove deletes path from disk and detaches its node from tree, keeping
// every ancestor's size consistent without a rescan.
func Remove(tree *model.Node, path string) (*model.Node, error) {
	if err := Delete(path, tree.Path); err != nil {
		return nil, err
	}
	removed, ok := tree.RemovePath(path)
	if !ok {
		return nil, fmt.Errorf("deleted %s but it was not in the scanned tree", path)
	}
	return removed, nil
}

func isStrictlyWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
