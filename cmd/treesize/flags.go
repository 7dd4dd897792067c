package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sadopc/treesize/internal/config"
	"github.com/sadopc/treesize/internal/disk"
	"github.com/sadopc/treesize/internal/logging"
	"github.com/sadopc/treesize/internal/scanner"
)

// globalFlags are the persistent flags shared by every command. Set flags
// override the config file.
type globalFlags struct {
	configPath    string
	mode          string
	workers       int
	parallelDepth int
	logLevel      string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "Config file (default: user config dir/treesize/config.yaml)")
	fs.StringVar(&g.mode, "mode", "auto", "Traversal mode: auto|parallel|sequential")
	fs.IntVarP(&g.workers, "workers", "j", 0, "Worker goroutines in parallel mode (0 = one per CPU)")
	fs.IntVar(&g.parallelDepth, "parallel-depth", scanner.DefaultParallelDepth, "Directory depths below the root that fan out to workers")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error")
}

// load reads the config file and applies explicitly set flags on top.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("mode") {
		cfg.Scan.Mode = g.mode
	}
	if fs.Changed("workers") {
		cfg.Scan.Workers = g.workers
	}
	if fs.Changed("parallel-depth") {
		depth := g.parallelDepth
		cfg.Scan.ParallelDepth = &depth
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEngine(cfg *config.Config, logger *slog.Logger) (*scanner.Engine, error) {
	opts, err := cfg.ScanOptions()
	if err != nil {
		return nil, err
	}
	return scanner.NewEngine(opts, disk.NewResolver(), logger), nil
}
