package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// alignCommand creates the align command.
func (c *CLI) alignCommand() *cobra.Command {
	var (
		flags  alignFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "align <a> [b]",
		Short: "Print the node correspondence of two pipelines",
		Long: `Align computes which steps of two pipelines play the same role. The
pipelines may come from two files or from one file holding exactly two.`,
		Args: cobra.RangeArgs(1, 2),
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
			if len(graphs) != 2 {
				return fmt.Errorf("align needs exactly two graphs, got %d", len(graphs))
			}
			g1, g2 := graphs[0], graphs[1]

			res, err := runner.Align(cmd.Context(), g1, g2, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("%s %s %s", g1.Name(), iconArrow, g2.Name())))
			fmt.Fprintln(out, correspondenceTable(g1.Name(), g2.Name(), g1.NodeIDs(), res.Correspondence))
			source := iconFresh
			if res.CacheHit {
				source = iconCached
			}
			printInfo("%d matched pairs (%s)", res.Len(), source)
			if res.Degenerate {
				printWarning("no shared edge types, similarity flooding skipped")
			}
			for _, p := range res.Rejected {
				printDetail("rejected %s %s %s (would create a cycle)", p.G1, iconArrow, p.G2)
			}
			return nil
		},
	}

	addAlignFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the correspondence as JSON")

	return cmd
}
