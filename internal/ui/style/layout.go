package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout manages the arrangement of UI components within terminal dimensions.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// chromeLines is header + breadcrumb + info bar + status bar.
const chromeLines = 4

// ContentHeight returns the height available for the tree rows.
func (l Layout) ContentHeight() int {
	return max(l.Height-chromeLines, 1)
}

// ContentWidth returns the width available for the main content area.
func (l Layout) ContentWidth() int {
	return max(l.Width, 20)
}

// BarWidth returns the width of the percentage bar in each row.
// Wide terminals cap it so names keep most of the space.
func (l Layout) BarWidth() int {
	return min(max((l.ContentWidth()-rowOverhead)/3, 5), 30)
}

// NameWidth returns the width available for a top-level name.
func (l Layout) NameWidth() int {
	return l.NameWidthAt(0)
}

// NameWidthAt returns the width available for a name at tree depth,
// after the indentation and expand arrow.
func (l Layout) NameWidthAt(depth int) int {
	w := l.ContentWidth() - rowOverhead - l.BarWidth() - IndentWidth(depth)
	return max(w, 8)
}

// IndentWidth is the number of cells used by indentation and the arrow.
func IndentWidth(depth int) int {
	return 2*depth + 2
}

// rowOverhead is the fixed-width portion of each tree row.
//
// Layout: mark(2) + pct(6) + " ["(2) + bar + "] "(2) + indent + name + " "(1) + size(10)
const rowOverhead = 23

// FullWidth pads a string with spaces to reach exactly the target visual width.
// If the string is already wider, it is returned as-is (no truncation).
func FullWidth(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}
