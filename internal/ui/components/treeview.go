package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/treesize/internal/model"
	"github.com/sadopc/treesize/internal/ui/style"
	"github.com/sadopc/treesize/internal/util"
)

// Row is one visible line of the collapsible tree.
type Row struct {
	Node       *model.Node
	Depth      int
	ParentSize int64
}

// FlattenTree lists the children of root, and recursively the children of
// every expanded directory, in display order. Dot-entries are skipped
// unless showHidden is set.
func FlattenTree(root *model.Node, showHidden bool) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		for _, c := range n.Children {
			if !showHidden && strings.HasPrefix(c.Name, ".") {
				continue
			}
			rows = append(rows, Row{Node: c, Depth: depth, ParentSize: n.Size})
			if !c.IsFile && c.Expanded {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 0)
	return rows
}

// TreeView renders the main tree list view.
type TreeView struct {
	Theme  style.Theme
	Layout style.Layout
	Rows   []Row
	Cursor int
	Offset int
	Marked map[string]bool
}

// Render renders the tree view.
func (tv *TreeView) Render() string {
	width := tv.Layout.ContentWidth()

	if len(tv.Rows) == 0 {
		empty := lipgloss.NewStyle().Foreground(tv.Theme.TextMuted).Render("  (empty directory)")
		return style.FullWidth(empty, width)
	}

	contentHeight := tv.Layout.ContentHeight()
	start := tv.Offset
	end := min(start+contentHeight, len(tv.Rows))

	var lines []string
	for i := start; i < end; i++ {
		row := tv.Rows[i]
		lines = append(lines, tv.renderRow(row, i == tv.Cursor, tv.Marked[row.Node.Path], width))
	}
	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func (tv *TreeView) renderRow(row Row, selected, marked bool, totalWidth int) string {
	n := row.Node

	pct := util.Percent(n.Size, row.ParentSize)
	pctStyled := tv.Theme.PercentText.Render(fmt.Sprintf("%5.1f%%", pct))
	bar := tv.Theme.BarGradient(tv.Layout.BarWidth(), pct/100.0)

	indent := strings.Repeat("  ", row.Depth)
	arrow := "  "
	if n.IsDir() {
		arrow = "▸ "
		if n.Expanded {
			arrow = "▾ "
		}
	}

	name := n.Name
	if n.IsDir() {
		name += "/"
	}
	name = util.TruncateString(name, tv.Layout.NameWidthAt(row.Depth))

	indicator := "  "
	switch {
	case selected && marked:
		indicator = tv.Theme.MarkedIndicator.Render("*") + tv.Theme.CursorIndicator.Render(">")
	case selected:
		indicator = tv.Theme.CursorIndicator.Render(" >")
	case marked:
		indicator = tv.Theme.MarkedIndicator.Render("* ")
	}

	var nameStyled string
	if n.IsDir() {
		nameStyled = tv.Theme.TreeGuide.Render(indent+arrow) + tv.Theme.DirName.Render(name)
	} else {
		nameStyled = tv.Theme.TreeGuide.Render(indent+arrow) + tv.Theme.FileName.Render(name)
	}
	sizeStyled := tv.Theme.SizeText.Width(10).Render(util.FormatSize(n.Size))

	line := fmt.Sprintf("%s%s [%s] %s", indicator, pctStyled, bar, nameStyled)
	gap := totalWidth - lipgloss.Width(line) - lipgloss.Width(sizeStyled)
	if gap < 1 {
		gap = 1
	}
	line += strings.Repeat(" ", gap) + sizeStyled
	line = style.FullWidth(line, totalWidth)

	if selected {
		return tv.Theme.SelectedRow.Width(totalWidth).Render(line)
	}
	return line
}

// EnsureVisible adjusts offset to keep cursor visible.
func (tv *TreeView) EnsureVisible() {
	contentHeight := tv.Layout.ContentHeight()
	if tv.Cursor < tv.Offset {
		tv.Offset = tv.Cursor
	}
	if tv.Cursor >= tv.Offset+contentHeight {
		tv.Offset = tv.Cursor - contentHeight + 1
	}
	if tv.Offset < 0 {
		tv.Offset = 0
	}
}
