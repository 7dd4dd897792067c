package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/treesize/internal/scanner"
	"github.com/sadopc/treesize/internal/ui/style"
	"github.com/sadopc/treesize/internal/util"
)

// RenderScanProgress renders the scanning progress overlay.
func RenderScanProgress(theme style.Theme, snap scanner.Snapshot, width, height int) string {
	boxWidth := min(56, width-4)

	title := snap.Message
	if title == "" {
		title = scanner.MsgStarting
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("  "+title))
	if snap.Root != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).
			Render("  "+util.TruncateString(snap.Root, max(boxWidth-6, 4))))
	}
	lines = append(lines, "")

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines = append(lines,
		statStyle.Render(fmt.Sprintf("  Files:  %s", util.FormatCount(snap.FilesScanned))),
		statStyle.Render(fmt.Sprintf("  Dirs:   %s", util.FormatCount(snap.DirsScanned))),
		statStyle.Render(fmt.Sprintf("  Size:   %s", util.FormatSize(snap.BytesScanned))),
		statStyle.Render(fmt.Sprintf("  Speed:  %s items/s  %s",
			util.FormatCount(int64(snap.ItemsPerSecond())),
			util.Throughput(snap.BytesScanned, snap.Duration))),
	)

	if snap.Errors > 0 {
		lines = append(lines, theme.ErrorText.Render(fmt.Sprintf("  Errors: %d", snap.Errors)))
	}
	lines = append(lines, "")

	diskType := snap.DiskType
	if diskType == "" {
		diskType = "Unknown"
	}
	mode := "single-threaded"
	if snap.Parallel {
		mode = fmt.Sprintf("parallel, %d threads", snap.ThreadCount)
	}
	diskLine := lipgloss.NewStyle().Foreground(theme.DiskKindColor(diskType)).Bold(true).Render(diskType) +
		statStyle.Render(fmt.Sprintf(" %s  (%s)", util.FormatCapacity(snap.DiskSize), mode))
	lines = append(lines, "  Disk:   "+diskLine)

	if snap.DiskSize > 0 {
		pct := snap.Percent()
		bar := theme.BarGradient(max(boxWidth-20, 5), pct/100)
		lines = append(lines, fmt.Sprintf("  [%s] %5.1f%%", bar, pct))
	}
	lines = append(lines, "")

	footer := fmt.Sprintf("  Elapsed: %s   esc to cancel", util.FormatElapsed(snap.Duration))
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(footer))

	box := theme.ModalStyle.Width(max(boxWidth, 1)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
