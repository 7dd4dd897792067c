package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/treesize/internal/model"
	"github.com/sadopc/treesize/internal/scanner"
	"github.com/sadopc/treesize/internal/ui/style"
	"github.com/sadopc/treesize/internal/util"
)

// StatusInfo holds the current state for the status bar.
type StatusInfo struct {
	Selected    *model.Node
	RowCount    int
	MarkedCount int
	MarkedSize  int64
	ShowHidden  bool
	Imported    bool
	Message     string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(theme style.Theme, info StatusInfo, width int) string {
	if info.Message != "" {
		msg := " " + lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(info.Message)
		return theme.StatusBarStyle.Width(width).Render(msg)
	}

	parts := []string{fmt.Sprintf("%d rows", info.RowCount)}
	if info.Selected != nil {
		parts = append(parts, fmt.Sprintf("%s %s", info.Selected.Name, util.FormatSize(info.Selected.Size)))
	}
	if info.Imported {
		parts = append(parts, "imported")
	}
	if info.MarkedCount > 0 {
		marked := lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true).
			Render(fmt.Sprintf("* %d marked (%s)", info.MarkedCount, util.FormatSize(info.MarkedSize)))
		parts = append(parts, marked)
	}
	left := " " + strings.Join(parts, " | ")

	hints := []struct{ key, desc string }{
		{"?", "help"},
		{"d", "delete"},
		{"q", "quit"},
	}
	var rightParts []string
	for _, h := range hints {
		k := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(h.key)
		d := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" " + h.desc)
		rightParts = append(rightParts, k+d)
	}
	right := strings.Join(rightParts, "  ") + " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := left + strings.Repeat(" ", gap) + right
	return theme.StatusBarStyle.Width(width).Render(line)
}

// RenderInfoBar shows how the last scan ran and the active sort.
func RenderInfoBar(theme style.Theme, snap scanner.Snapshot, sort model.SortConfig, width int) string {
	val := theme.InfoValue.Render
	lbl := theme.InfoBarStyle.Render

	var parts []string
	if snap.DiskType != "" {
		parts = append(parts, lbl("disk ")+lipgloss.NewStyle().
			Foreground(theme.DiskKindColor(snap.DiskType)).Bold(true).Render(snap.DiskType))
	}
	if snap.ThreadCount > 0 {
		mode := "sequential"
		if snap.Parallel {
			mode = "parallel"
		}
		parts = append(parts, lbl("mode ")+val(mode), lbl("threads ")+val(fmt.Sprint(snap.ThreadCount)))
	}
	if snap.Duration > 0 {
		parts = append(parts, lbl("took ")+val(util.FormatElapsed(snap.Duration)))
	}
	if snap.Errors > 0 {
		parts = append(parts, theme.ErrorText.Render(fmt.Sprintf("%d unreadable", snap.Errors)))
	}
	left := " " + strings.Join(parts, lbl("  "))

	field := "Size"
	if sort.Field == model.SortByName {
		field = "Name"
	}
	arrow := "↓"
	if sort.Order == model.SortAsc {
		arrow = "↑"
	}
	right := lbl("Sort: "+field+" "+arrow) + " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(theme.BgLight).
		Width(width).
		Render(line)
}
