package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/treesize/internal/model"
	"github.com/sadopc/treesize/internal/ui/style"
	"github.com/sadopc/treesize/internal/util"
)

// HeaderInfo is what the header shows about the scanned tree.
type HeaderInfo struct {
	Root  *model.Node
	Files int64
	Dirs  int64
}

// RenderHeader renders the top header bar.
func RenderHeader(theme style.Theme, info HeaderInfo, width int) string {
	if info.Root == nil || width < 10 {
		return ""
	}

	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(" treesize")

	stats := fmt.Sprintf("%s files  %s dirs  %s ",
		util.FormatCount(info.Files),
		util.FormatCount(info.Dirs),
		util.FormatSize(info.Root.Size),
	)
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	pathMaxW := width - titleW - statsW - 3
	pathStr := info.Root.Path
	if pathMaxW > 5 {
		pathStr = util.TruncateString(pathStr, pathMaxW)
	} else {
		pathStr = ""
	}

	pathStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + pathStr)
	gap := max(width-titleW-lipgloss.Width(pathStyled)-statsW, 1)

	line := titleStyled + pathStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}

// RenderBreadcrumb shows the location of the selected entry relative to
// the scan root.
func RenderBreadcrumb(theme style.Theme, root, selected *model.Node, width int) string {
	if root == nil {
		return ""
	}

	segments := []string{root.Name}
	if selected != nil && selected != root {
		if rel, err := filepath.Rel(root.Path, selected.Path); err == nil && rel != "." {
			segments = append(segments, strings.Split(rel, string(filepath.Separator))...)
		}
	}

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" > ")
	parts := make([]string, len(segments))
	for i, seg := range segments {
		s := lipgloss.NewStyle().Foreground(theme.TextMuted)
		if i == len(segments)-1 {
			s = lipgloss.NewStyle().Foreground(theme.TextPrimary).Bold(true)
		}
		parts[i] = s.Render(seg)
	}

	breadcrumb := " " + strings.Join(parts, sep)
	if lipgloss.Width(breadcrumb) > width && len(parts) > 2 {
		ellipsis := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("...")
		breadcrumb = " " + ellipsis + sep + strings.Join(parts[len(parts)-2:], sep)
	}

	return theme.BreadcrumbStyle.Width(width).Render(breadcrumb)
}
