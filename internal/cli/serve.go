package cli

import (
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/observability/metrics"
	"github.com/matzehuels/hypertile/pkg/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfg         server.Config
		withMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes profile, reduce, tiles, render and walk over HTTP. The cache
backend and key prefix come from the [cache] and [server] tables of the
project file, so several servers can share one Redis or MongoDB cache.

With --metrics, pipeline, cache and request counters are exported in the
Prometheus format at /metrics.`,
		Example: `  hypertile serve --addr :9000
  hypertile serve --metrics --rate-limit 20
  hypertile serve --config deploy/hypertile.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.config().Server.Addr != "" {
				cfg.Addr = c.config().Server.Addr
			}
			if !cmd.Flags().Changed("rate-limit") {
				cfg.RateLimit = c.config().Server.RateLimit
			}
			if !cmd.Flags().Changed("metrics") {
				withMetrics = c.config().Server.Metrics
			}
			if cfg.RateLimit < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--rate-limit must not be negative")
			}
			_, port, err := net.SplitHostPort(cfg.Addr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "listen address %q", cfg.Addr)
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			if withMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m := metrics.New(reg)
				m.Register()
				cfg.Metrics = m.Handler()
			}

			cfg.Runner = runner
			cfg.Logger = c.Logger
			printInfo("Serving on %s", StyleHighlight.Render(cfg.Addr))
			printNextStep("Try", "curl -s localhost:"+port+"/v1/profile")
			return server.New(cfg).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().IntVar(&cfg.MaxDepth, "max-depth", server.DefaultMaxDepth, "deepest tiling a request may ask for")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "timeout", server.DefaultRequestTimeout, "time limit per request")
	cmd.Flags().Float64Var(&cfg.RateLimit, "rate-limit", 0, "requests per second across the API (0 for no limit)")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "serve Prometheus metrics at /metrics")
	return cmd
}
