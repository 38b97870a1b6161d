package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/internal/server"
	"github.com/matzehuels/flowboard/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve boards over HTTP and websockets",
		Long: `Serve boards over HTTP and websockets.

Boards are uploaded with PUT /boards/{name} and edited through the JSON API
or the /boards/{name}/ws drag stream. Every change is saved to the configured
board store. Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.setCLIDefaults(&opts)
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := server.NewMetrics(reg)
			metrics.Install()

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithGatherer(reg),
				server.WithMetrics(metrics),
				server.WithDefaults(opts),
			)

			printKeyValue("Address", addr)
			printKeyValue("Store", c.Config.Store.Backend)
			printKeyValue("Strategy", opts.Strategy)
			printNewline()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}
