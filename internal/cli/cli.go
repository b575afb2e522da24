// Package cli implements the pipemerge command-line interface.
//
// # Commands
//
//   - build: convert pipeline files into graphs
//   - align: print the node correspondence of two pipelines
//   - merge: fold any number of pipelines or merged graphs into one graph
//   - compare: pairwise overlap of pipelines
//   - serve: run the HTTP API
//   - config: print the effective alignment options
//   - cache: manage the alignment cache
//
// Alignment parameters come from the defaults, then the file named by
// --config, then the per-command flags.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipemerge/pkg/buildinfo"
	"github.com/matzehuels/pipemerge/pkg/cache"
	"github.com/matzehuels/pipemerge/pkg/engine"
)

// =============================================================================
// Constants
// =============================================================================

// appName names the cache directory.
const appName = "pipemerge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds the logger and the persistent flags shared by all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	redisURL   string
	refresh    bool
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pipemerge aligns and merges pipeline graphs",
		Long:         `pipemerge finds the steps that play the same role in different pipelines and fuses the pipelines into one graph that shows their shared structure.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "TOML file with alignment options")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the alignment cache")
	pf.StringVar(&c.redisURL, "redis", "", "share the alignment cache through redis (redis://host:port/db)")
	pf.BoolVar(&c.refresh, "refresh", false, "recompute alignments even when cached")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an engine runner whose cache keys are scoped to this
// build.
func (c *CLI) newRunner(ctx context.Context) (*engine.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return engine.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch {
	case c.noCache:
		return cache.NewNullCache(), nil
	case c.redisURL != "":
		return cache.NewRedisCache(ctx, c.redisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pipemerge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options
// =============================================================================

// alignFlags are the per-command overrides of the alignment options.
type alignFlags struct {
	alpha       float64
	iterations  int
	addCost     float64
	delCost     float64
	concurrency int
}

func addAlignFlags(cmd *cobra.Command, f *alignFlags) {
	d := engine.DefaultOptions()
	cmd.Flags().Float64Var(&f.alpha, "alpha", d.Alpha, "weight of neighbour similarity per flooding round (0-1)")
	cmd.Flags().IntVar(&f.iterations, "iterations", d.Iterations, "similarity flooding rounds")
	cmd.Flags().Float64Var(&f.addCost, "add-cost", d.AddCost, "cost of leaving a first-graph node unmatched")
	cmd.Flags().Float64Var(&f.delCost, "del-cost", d.DelCost, "cost of leaving a second-graph node unmatched")
}

// options resolves the alignment options: defaults, then --config, then the
// flags set on cmd.
func (c *CLI) options(cmd *cobra.Command, f *alignFlags) (engine.Options, error) {
	opts := engine.DefaultOptions()
	if c.configPath != "" {
		var err error
		if opts, err = engine.LoadOptions(c.configPath); err != nil {
			return opts, err
		}
	}
	if f != nil {
		flags := cmd.Flags()
		if flags.Changed("alpha") {
			opts.Alpha = f.alpha
		}
		if flags.Changed("iterations") {
			opts.Iterations = f.iterations
		}
		if flags.Changed("add-cost") {
			opts.AddCost = f.addCost
		}
		if flags.Changed("del-cost") {
			opts.DelCost = f.delCost
		}
		if flags.Changed("concurrency") {
			opts.Concurrency = f.concurrency
		}
	}
	opts.Refresh = c.refresh
	opts.Logger = c.Logger
	return opts, opts.Validate()
}
