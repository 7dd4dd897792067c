package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sadopc/treesize/internal/logging"
	"github.com/sadopc/treesize/internal/model"
	"github.com/sadopc/treesize/internal/ops"
	"github.com/sadopc/treesize/internal/scanner"
	"github.com/sadopc/treesize/internal/util"
)

// errCancelled is returned when an interrupt stopped the scan.
var errCancelled = errors.New("scan cancelled")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type scanFlags struct {
	export  string
	top     int
	verbose bool
	quiet   bool
}

func newScanCmd(g *globalFlags) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory without the TUI and print a summary",
		Long: `Scan a directory tree headlessly. A live progress line is drawn on
terminals; Ctrl+C cancels the scan and discards the partial tree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runScan(cmd, g, f, path)
		},
	}
	cmd.Flags().StringVarP(&f.export, "export", "o", "", "Write the tree as ncdu JSON ('-' for stdout, .zst to compress)")
	cmd.Flags().IntVar(&f.top, "top", 10, "Largest entries to list in the summary (0 to skip)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log scan events to stderr")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Print nothing but errors")
	return cmd
}

func runScan(cmd *cobra.Command, g *globalFlags, f *scanFlags, path string) error {
	cfg, err := g.load(cmd)
	if err != nil {
		return err
	}
	logger := logging.Discard()
	if f.verbose {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = logging.New(cmd.ErrOrStderr(), level)
	}
	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := scanner.NewSession(engine)
	future := session.Start(ctx, path)

	stdout := cmd.OutOrStdout()
	toStdout := f.export == "-"
	live := !f.quiet && !toStdout && term.IsTerminal(int(os.Stderr.Fd()))
	watchProgress(session, future, cmd.ErrOrStderr(), live)

	out, err := future.Wait(context.Background())
	if err != nil {
		return err
	}
	snap := session.Progress().Load()

	switch out.Status {
	case scanner.StatusFailed:
		return out.Err
	case scanner.StatusCancelled:
		fmt.Fprintln(cmd.ErrOrStderr(), scanner.MsgCancelled)
		return errCancelled
	}

	if f.export != "" {
		if err := ops.ExportJSON(out.Root, f.export, version); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if toStdout {
			return nil
		}
	}
	if f.quiet {
		return nil
	}
	printSummary(stdout, out, snap, f.top)
	if f.export != "" {
		fmt.Fprintf(stdout, "Exported to %s\n", f.export)
	}
	return nil
}

// watchProgress blocks until the scan finishes, redrawing a status line on
// w every 80ms when live is set.
func watchProgress(session *scanner.Session, future *scanner.Future, w io.Writer, live bool) {
	if !live {
		<-future.Done()
		return
	}
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-future.Done():
			fmt.Fprint(w, "\r\033[K")
			return
		case <-ticker.C:
			snap, ok := session.PollProgress()
			if !ok {
				continue
			}
			fmt.Fprintf(w, "\r\033[K%s %s %s files | %s dirs | %s | %s",
				spinnerFrames[frame%len(spinnerFrames)],
				snap.Message,
				humanize.Comma(snap.FilesScanned),
				humanize.Comma(snap.DirsScanned),
				humanize.IBytes(uint64(snap.BytesScanned)),
				util.FormatElapsed(snap.Duration),
			)
			if snap.DiskSize > 0 {
				fmt.Fprintf(w, " | %.1f%% of disk", snap.Percent())
			}
			frame++
		}
	}
}

func printSummary(w io.Writer, out scanner.Outcome, snap scanner.Snapshot, top int) {
	title := color.New(color.Bold)
	label := color.New(color.FgCyan)
	value := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	title.Fprintf(w, "Scanned %s\n", out.Root.Path)

	row := func(name, format string, a ...any) {
		label.Fprintf(w, "  %-8s", name)
		value.Fprintf(w, format+"\n", a...)
	}
	row("Files:", "%s", humanize.Comma(out.Files))
	row("Dirs:", "%s", humanize.Comma(out.Dirs))
	row("Size:", "%s (%s bytes)", humanize.IBytes(uint64(out.Bytes)), humanize.Comma(out.Bytes))

	mode := "sequential"
	if snap.Parallel {
		mode = fmt.Sprintf("parallel, %d threads", snap.ThreadCount)
	}
	diskType := snap.DiskType
	if diskType == "" {
		diskType = "Unknown"
	}
	row("Disk:", "%s, %s, %s", diskType, util.FormatCapacity(snap.DiskSize), mode)
	row("Time:", "%s", util.FormatElapsed(out.Elapsed))
	if out.Errors > 0 {
		warn.Fprintf(w, "  %d entries could not be read; sizes may be low\n", out.Errors)
	}

	if top <= 0 || len(out.Root.Children) == 0 {
		return
	}
	fmt.Fprintln(w)
	title.Fprintln(w, "Largest entries")
	for _, c := range largest(out.Root, top) {
		name := c.Name
		if c.IsDir() {
			name += string(filepath.Separator)
		}
		value.Fprintf(w, "  %10s", humanize.IBytes(uint64(c.Size)))
		fmt.Fprintf(w, "  %5.1f%%  %s\n", util.Percent(c.Size, out.Root.Size), name)
	}
}

// largest returns up to n direct children of root, biggest first.
func largest(root *model.Node, n int) []*model.Node {
	children := append([]*model.Node(nil), root.Children...)
	model.SortChildren(children, model.DefaultSort())
	return children[:min(n, len(children))]
}
