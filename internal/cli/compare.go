package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		flags  alignFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "compare <inputs...>",
		Short: "Print the pairwise overlap of pipelines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			graphs, err := runner.LoadGraphs(cmd.Context(), args...)
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			rows, err := runner.Compare(cmd.Context(), graphs, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Compared %d pairs", len(rows)))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			fmt.Fprintln(out, comparisonTable(rows))
			return nil
		},
	}

	addAlignFlags(cmd, &flags)
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 0, "parallel alignments (default one per CPU)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the comparisons as JSON")

	return cmd
}
