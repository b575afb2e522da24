package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipemerge/pkg/observability"
	"github.com/matzehuels/pipemerge/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   alignFlags
		addr    string
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes align, merge and compare over HTTP, plus /healthz and
Prometheus metrics on /metrics. The alignment flags set the defaults that
requests start from.`,
		Args: cobra.NoArgs,
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

			prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
			observability.SetAlignHooks(prom)
			observability.SetCacheHooks(prom)
			observability.SetServerHooks(prom)

			opts.Logger = nil
			srv := server.New(server.Config{
				Runner:       runner,
				Defaults:     &opts,
				MaxBodyBytes: maxBody,
				Logger:       c.Logger,
			})
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	addAlignFlags(cmd, &flags)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")

	return cmd
}
