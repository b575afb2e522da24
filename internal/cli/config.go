package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipemerge/pkg/engine"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var flags alignFlags

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective alignment options as TOML",
		Long: `Config prints the options a command would run with, after applying
--config and the flags. The output is a valid config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			return engine.WriteOptions(cmd.OutOrStdout(), opts)
		},
	}

	addAlignFlags(cmd, &flags)
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 0, "parallel alignments (default one per CPU)")

	return cmd
}
