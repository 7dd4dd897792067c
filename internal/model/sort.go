package model

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortField defines what to sort by.
type SortField int

const (
	SortBySize SortField = iota
	SortByName
)

// SortOrder defines ascending or descending.
type SortOrder int

const (
	SortDesc SortOrder = iota
	SortAsc
)

// SortConfig holds sort preferences.
type SortConfig struct {
	Field SortField
	Order SortOrder
	// DirsFirst keeps directories before files regardless of sort.
	DirsFirst bool
}

// DefaultSort returns the post-scan order: size descending, files and
// directories interleaved.
func DefaultSort() SortConfig {
	return SortConfig{
		Field: SortBySize,
		Order: SortDesc,
	}
}

// SortTreeBySize orders the children of every directory under n by
// non-increasing size. Equal sizes fall back to natural name order.
func SortTreeBySize(n *Node) {
	SortTree(n, DefaultSort())
}

// SortTree applies cfg to the children of n and of every directory below it.
func SortTree(n *Node, cfg SortConfig) {
	if n.IsFile {
		return
	}
	SortChildren(n.Children, cfg)
	for _, c := range n.Children {
		if !c.IsFile {
			SortTree(c, cfg)
		}
	}
}

// SortChildren sorts a slice of nodes in place according to cfg.
func SortChildren(children []*Node, cfg SortConfig) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]

		if cfg.DirsFirst {
			aDir, bDir := a.IsDir(), b.IsDir()
			if aDir != bDir {
				return aDir
			}
		}

		switch cfg.Field {
		case SortByName:
			if cfg.Order == SortDesc {
				a, b = b, a
			}
			return nameLess(a, b)
		default:
			if a.Size != b.Size {
				if cfg.Order == SortDesc {
					return a.Size > b.Size
				}
				return a.Size < b.Size
			}
			return nameLess(a, b)
		}
	})
}

func nameLess(a, b *Node) bool {
	return natural.Less(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

// IsSortedBySize reports whether every directory under n lists its
// children by non-increasing size.
func IsSortedBySize(n *Node) bool {
	ok := true
	n.Walk(func(node *Node, _ int) bool {
		for i := 1; i < len(node.Children); i++ {
			if node.Children[i-1].Size < node.Children[i].Size {
				ok = false
				return false
			}
		}
		return ok
	})
	return ok
}
