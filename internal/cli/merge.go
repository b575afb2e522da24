package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipemerge/pkg/engine"
)

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var flags alignFlags
	out := graphOpts{format: engine.FormatJSON}

	cmd := &cobra.Command{
		Use:   "merge <inputs...>",
		Short: "Merge pipelines into one graph",
		Long: `Merge aligns and fuses pipelines from left to right. Inputs may be
pipeline files (JSON or YAML) or node-link graphs written by an earlier merge,
so a large set can be merged incrementally.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.ValidateFormat(out.format); err != nil {
				return err
			}
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			graphs, err := runner.LoadGraphs(cmd.Context(), args...)
			if err != nil {
				return err
			}
			res, err := runner.Merge(cmd.Context(), graphs, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Merged %d graphs", len(graphs)))

			for _, step := range res.Steps {
				c.Logger.Debug("step", "graph", step.Graph, "matched", step.Matched,
					"rejected", step.Rejected, "cached", step.CacheHit)
				if step.Degenerate {
					c.Logger.Warn("no shared edge types, similarity flooding skipped", "graph", step.Graph)
				}
			}
			if err := emitGraph(cmd.OutOrStdout(), res.Graph, out); err != nil {
				return err
			}
			if out.output != "" {
				printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), anyCached(res.Steps))
			}
			return nil
		},
	}

	addAlignFlags(cmd, &flags)
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&out.format, "format", "f", out.format, "output format: json, dot")
	cmd.Flags().BoolVar(&out.detailed, "detailed", false, "list every record in DOT labels")

	return cmd
}

// anyCached reports whether any alignment of a merge came from the cache.
func anyCached(steps []engine.MergeStep) bool {
	for _, s := range steps {
		if s.CacheHit {
			return true
		}
	}
	return false
}
