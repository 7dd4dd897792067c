package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/treesize/internal/ui/style"
	"github.com/sadopc/treesize/internal/util"
)

// maxConfirmRows caps how many pending items the dialog lists.
const maxConfirmRows = 8

// ConfirmItem represents an item pending deletion.
type ConfirmItem struct {
	Name  string
	Path  string
	Size  int64
	IsDir bool
}

// DeletePlan is what the confirmation dialog asks about: the items to
// remove and the scan root they are confined to.
type DeletePlan struct {
	Root     string
	RootSize int64
	Items    []ConfirmItem
}

// Total returns the combined size of the planned items.
func (p DeletePlan) Total() int64 {
	var total int64
	for _, it := range p.Items {
		total += it.Size
	}
	return total
}

// label is the item's path relative to the root, with a trailing slash for
// directories so nested selections stay distinguishable.
func (p DeletePlan) label(it ConfirmItem) string {
	name := it.Name
	if rel, err := filepath.Rel(p.Root, it.Path); err == nil && filepath.IsLocal(rel) {
		name = filepath.ToSlash(rel)
	}
	if it.IsDir {
		name += "/"
	}
	return name
}

// RenderConfirmDialog renders the deletion confirmation modal.
func RenderConfirmDialog(theme style.Theme, plan DeletePlan, width, height int) string {
	boxWidth := min(64, width-4)
	inner := max(boxWidth-6, 8)

	muted := lipgloss.NewStyle().Foreground(theme.TextMuted)
	total := plan.Total()

	var b strings.Builder
	b.WriteString(theme.ModalTitle.Render(fmt.Sprintf("Delete %d item(s)?", len(plan.Items))))
	b.WriteString("\n")
	b.WriteString(muted.Render("under " + util.TruncateString(plan.Root, max(inner-6, 4))))
	b.WriteString("\n\n")

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(1)
			switch col {
			case 0:
				return s.Foreground(theme.Error)
			default:
				return s.Foreground(theme.TextMuted).Align(lipgloss.Right)
			}
		})
	nameWidth := max(inner-20, 4)
	for _, it := range plan.Items[:min(maxConfirmRows, len(plan.Items))] {
		t.Row(
			util.TruncateString(plan.label(it), nameWidth),
			util.FormatSize(it.Size),
			fmt.Sprintf("%.1f%%", util.Percent(it.Size, plan.RootSize)),
		)
	}
	if len(plan.Items) > 0 {
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	if extra := len(plan.Items) - maxConfirmRows; extra > 0 {
		b.WriteString(muted.Render(fmt.Sprintf("... and %d more", extra)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary).
		Render(fmt.Sprintf("Frees %s (%.1f%% of scanned)", util.FormatSize(total), util.Percent(total, plan.RootSize))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("This cannot be undone."))
	b.WriteString("\n\n")

	hint := func(k string, c lipgloss.Color) string { return lipgloss.NewStyle().Bold(true).Foreground(c).Render(k) }
	b.WriteString(hint("y", theme.Success) + muted.Render(" delete   ") + hint("n/esc", theme.Error) + muted.Render(" keep"))

	box := theme.ModalStyle.
		Width(max(boxWidth, 1)).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
