package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipemerge/pkg/engine"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := graphOpts{format: engine.FormatJSON}

	cmd := &cobra.Command{
		Use:   "build <pipelines>",
		Short: "Convert a pipeline file into a graph",
		Long: `Build reads a JSON or YAML pipeline file and prints its graph as
node-link JSON or Graphviz DOT. A file holding several pipelines needs an
index to select one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.ValidateFormat(opts.format); err != nil {
				return err
			}
			runner := engine.NewRunner(nil, nil, c.Logger)
			graphs, err := runner.LoadGraphs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			index, _ := cmd.Flags().GetInt("index")
			if index < 0 || index >= len(graphs) {
				return fmt.Errorf("%s holds %d graphs, index %d out of range", args[0], len(graphs), index)
			}
			g := graphs[index]
			c.Logger.Debug("built graph", "name", g.Name(), "nodes", g.NodeCount(), "edges", g.EdgeCount())
			return emitGraph(cmd.OutOrStdout(), g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list every record in DOT labels")
	cmd.Flags().IntP("index", "i", 0, "pipeline to build when the file holds several")

	return cmd
}
