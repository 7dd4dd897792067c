package model

import (
	"path/filepath"
)

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)

// Node is one file or directory in a scanned tree.
// A node exclusively owns its children; there are no back-references.
type Node struct {
	Path     string  // Absolute path, unique within a scan
	Name     string  // Last path component
	Size     int64   // File length, or sum of descendant file sizes for directories
	IsFile   bool    // Leaf discriminator; an empty directory is not a file
	Children []*Node // Insertion order until sorted
	Expanded bool    // Display state owned by the presentation layer
}

// NewDir creates an empty directory node for path.
func NewDir(path string) *Node {
	return &Node{Path: path, Name: baseName(path)}
}

// NewFile creates a file node for path with the given size.
func NewFile(path string, size int64) *Node {
	return &Node{Path: path, Name: baseName(path), Size: size, IsFile: true}
}

// baseName returns the last component of path, falling back to the
// path itself for roots such as "/" or "C:\".
func baseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return path
	}
	return name
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return !n.IsFile }

// AddChild appends child and adds its size to n.
// Not safe for concurrent use; each directory is built by one goroutine.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
	n.Size = saturatingAddInt64(n.Size, child.Size)
}

// UpdateSize recalculates this directory's size from its children.
func (n *Node) UpdateSize() {
	if n.IsFile {
		return
	}
	var size int64
	for _, c := range n.Children {
		size = saturatingAddInt64(size, c.Size)
	}
	n.Size = size
}

// UpdateSizeRecursive performs a bottom-up size calculation.
func (n *Node) UpdateSizeRecursive() {
	for _, c := range n.Children {
		if !c.IsFile {
			c.UpdateSizeRecursive()
		}
	}
	n.UpdateSize()
}

func saturatingAddInt64(a, b int64) int64 {
	if b > 0 && a > maxInt64-b {
		return maxInt64
	}
	if b < 0 && a < minInt64-b {
		return minInt64
	}
	return a + b
}

// Counts returns the number of files and directories below n, n excluded.
func (n *Node) Counts() (files, dirs int64) {
	for _, c := range n.Children {
		if c.IsFile {
			files++
			continue
		}
		dirs++
		f, d := c.Counts()
		files += f
		dirs += d
	}
	return files, dirs
}

// Walk calls fn for n and every descendant in pre-order.
// Returning false from fn skips that node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the node with the given path, or nil.
func (n *Node) Find(path string) *Node {
	if n.Path == path {
		return n
	}
	if n.IsFile || !isWithin(n.Path, path) {
		return nil
	}
	for _, c := range n.Children {
		if found := c.Find(path); found != nil {
			return found
		}
	}
	return nil
}

// RemovePath detaches the descendant whose path equals path and subtracts
// its size from every ancestor. The receiver itself is never removed.
func (n *Node) RemovePath(path string) (*Node, bool) {
	if n.IsFile || n.Path == path || !isWithin(n.Path, path) {
		return nil, false
	}
	for i, c := range n.Children {
		if c.Path == path {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			n.Size = saturatingAddInt64(n.Size, -c.Size)
			return c, true
		}
		if removed, ok := c.RemovePath(path); ok {
			n.Size = saturatingAddInt64(n.Size, -removed.Size)
			return removed, true
		}
	}
	return nil, false
}

// ExpandAll sets the expanded state of n and every directory below it.
func (n *Node) ExpandAll(expanded bool) {
	n.Walk(func(node *Node, _ int) bool {
		if !node.IsFile {
			node.Expanded = expanded
		}
		return true
	})
}

func isWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !hasParentPrefix(rel)
}

func hasParentPrefix(rel string) bool {
	prefix := ".." + string(filepath.Separator)
	return len(rel) >= len(prefix) && rel[:len(prefix)] == prefix
}
