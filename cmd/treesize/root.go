package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/treesize/internal/logging"
	"github.com/sadopc/treesize/internal/ops"
	"github.com/sadopc/treesize/internal/scanner"
	"github.com/sadopc/treesize/internal/ui"
)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var importPath, exportPath string

	cmd := &cobra.Command{
		Use:   "treesize [path]",
		Short: "Interactive disk usage analyzer",
		Long: `treesize scans a directory tree, computing the size of every directory,
and lets you browse, export and prune the result in the terminal.

Traversal runs in parallel on solid-state disks and sequentially on
rotational ones, unless --mode says otherwise.`,
		Example: `  treesize .                         Browse the current directory
  treesize --mode sequential /srv    Force single-threaded traversal
  treesize --import scan.json        View an exported scan
  treesize scan --export scan.json.zst /home`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if importPath != "" {
				if len(args) > 0 {
					return errors.New("--import cannot be used with a scan path")
				}
				if exportPath != "" {
					return reexport(cmd, importPath, exportPath)
				}
				return runTUI(ui.NewAppFromImport(importPath, nil), exportPath)
			}

			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", scanner.ErrNotFound, path)
			}

			logger, closeLog := logging.ForTUI()
			defer closeLog()
			engine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			if exportPath == "" {
				exportPath = cfg.ExportPath
			}
			return runTUI(ui.NewApp(path, scanner.NewSession(engine), logger), exportPath)
		},
	}

	g.register(cmd.PersistentFlags())
	cmd.Flags().StringVar(&importPath, "import", "", "View a previously exported scan instead of scanning")
	cmd.Flags().StringVar(&exportPath, "export", "", "Export target for the E key; with --import, re-export and exit")

	cmd.AddCommand(newScanCmd(g), newDisksCmd())
	return cmd
}

func runTUI(app *ui.App, exportPath string) error {
	app.ExportPath = exportPath
	app.Version = version
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return app.FatalError()
}

func reexport(cmd *cobra.Command, importPath, exportPath string) error {
	root, err := ops.ImportJSON(importPath)
	if err != nil {
		return fmt.Errorf("importing %s: %w", importPath, err)
	}
	if err := ops.ExportJSON(root, exportPath, version); err != nil {
		return fmt.Errorf("exporting %s: %w", exportPath, err)
	}
	if exportPath != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", exportPath)
	}
	return nil
}
