package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the palette and the styles built from it.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Success   lipgloss.Color

	BgMedium lipgloss.Color
	BgLight  lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Size and progress bars blend from GradientStart to GradientEnd.
	GradientStart lipgloss.Color
	GradientEnd   lipgloss.Color

	HeaderStyle     lipgloss.Style
	BreadcrumbStyle lipgloss.Style
	TreeGuide       lipgloss.Style
	InfoBarStyle    lipgloss.Style
	InfoValue       lipgloss.Style
	StatusBarStyle  lipgloss.Style
	SelectedRow     lipgloss.Style
	MarkedIndicator lipgloss.Style
	CursorIndicator lipgloss.Style
	DirName         lipgloss.Style
	FileName        lipgloss.Style
	SizeText        lipgloss.Style
	PercentText     lipgloss.Style
	ErrorText       lipgloss.Style
	HelpKey         lipgloss.Style
	HelpDesc        lipgloss.Style
	ModalStyle      lipgloss.Style
	ModalTitle      lipgloss.Style
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() Theme {
	t := Theme{
		Primary:   lipgloss.Color("#7B2FBE"),
		Secondary: lipgloss.Color("#00D4AA"),
		Accent:    lipgloss.Color("#61AFEF"),
		Error:     lipgloss.Color("#E06C75"),
		Warning:   lipgloss.Color("#E5C07B"),
		Success:   lipgloss.Color("#98C379"),

		BgMedium: lipgloss.Color("#282A36"),
		BgLight:  lipgloss.Color("#313244"),

		TextPrimary:   lipgloss.Color("#CDD6F4"),
		TextSecondary: lipgloss.Color("#BAC2DE"),
		TextMuted:     lipgloss.Color("#6C7086"),

		GradientStart: lipgloss.Color("#7B2FBE"),
		GradientEnd:   lipgloss.Color("#00D4AA"),
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	// Header spacing is done by the renderer.
	t.HeaderStyle = fg(t.TextPrimary).Bold(true).Background(t.BgMedium)
	t.BreadcrumbStyle = fg(t.TextMuted)
	t.TreeGuide = fg(t.TextMuted)
	t.InfoBarStyle = fg(t.TextMuted)
	t.InfoValue = fg(t.Secondary).Bold(true)
	t.StatusBarStyle = fg(t.TextSecondary).Background(t.BgMedium)

	t.SelectedRow = fg(lipgloss.Color("#FFFFFF")).Bold(true).Background(lipgloss.Color("#4A4A6A"))
	t.MarkedIndicator = fg(t.Error).Bold(true)
	t.CursorIndicator = fg(t.Primary).Bold(true)
	t.DirName = fg(t.Accent).Bold(true)
	t.FileName = fg(t.TextSecondary)
	t.SizeText = fg(t.TextMuted).Align(lipgloss.Right)
	t.PercentText = fg(t.TextMuted).Width(6).Align(lipgloss.Right)
	t.ErrorText = fg(t.Error)

	t.HelpKey = fg(t.Primary).Bold(true).Width(14)
	t.HelpDesc = fg(t.TextSecondary)

	t.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Background(t.BgMedium)
	t.ModalTitle = fg(t.TextPrimary).Bold(true).Padding(0, 0, 1, 0)

	return t
}

// DiskKindColor picks the accent for a disk type label.
func (t Theme) DiskKindColor(label string) lipgloss.Color {
	switch label {
	case "SSD":
		return t.Success
	case "HDD":
		return t.Warning
	default:
		return t.TextMuted
	}
}

// BarGradient renders a bar of width cells filled to ratio. Each filled
// cell takes its own colour along the gradient, so a full bar always ends
// on GradientEnd.
func (t Theme) BarGradient(width int, ratio float64) string {
	if width <= 0 {
		return ""
	}
	filled := min(max(int(ratio*float64(width)), 0), width)

	var buf strings.Builder
	buf.Grow(width * 20)

	start, _ := colorful.Hex(string(t.GradientStart))
	end, _ := colorful.Hex(string(t.GradientEnd))
	for i := range filled {
		pos := float64(i) / float64(max(width-1, 1))
		cell := lipgloss.Color(start.BlendLab(end, pos).Hex())
		buf.WriteString(lipgloss.NewStyle().Foreground(cell).Render("━"))
	}
	if filled < width {
		buf.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(strings.Repeat("─", width-filled)))
	}
	return buf.String()
}
