package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/treesize/internal/disk"
)

func newDisksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disks",
		Short: "List mounted volumes with capacity and media type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vols, err := disk.List()
			if err != nil {
				return fmt.Errorf("listing volumes: %w", err)
			}
			if len(vols) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No volumes found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), volumeTable(vols))
			return nil
		},
	}
}

func volumeTable(vols []disk.Volume) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("MOUNT", "DEVICE", "FS", "TYPE", "SIZE", "FREE", "USED").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col >= 4 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	for _, v := range vols {
		t.Row(
			v.MountPoint,
			v.Device,
			v.FSType,
			v.Kind.String(),
			humanize.IBytes(v.TotalBytes),
			humanize.IBytes(v.FreeBytes),
			fmt.Sprintf("%.0f%%", v.UsedPercent()),
		)
	}
	return t.String()
}
