package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/treesize/internal/ui/style"
)

// HelpSection groups key bindings under a heading.
type HelpSection struct {
	Name  string
	Binds []key.Binding
}

// RenderHelp renders the help overlay.
func RenderHelp(theme style.Theme, sections []HelpSection, width, height int) string {
	boxWidth := min(60, width-4)

	var lines []string
	lines = append(lines, theme.ModalTitle.Render("  treesize - Keyboard Shortcuts"), "")

	for _, sec := range sections {
		lines = append(lines, lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent).
			Render("  "+sec.Name))

		for _, b := range sec.Binds {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("%s %s",
				theme.HelpKey.Render("    "+h.Key),
				theme.HelpDesc.Render(h.Desc)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, lipgloss.NewStyle().
		Foreground(theme.TextMuted).
		Render("  Press ? or Esc to close"))

	box := theme.ModalStyle.
		Width(max(boxWidth, 1)).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
