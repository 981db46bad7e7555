package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cookgraph/internal/server"
)

// serveCommand creates the serve command for the HTTP control API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve [scenario.toml]",
		Short: "Serve a scenario's session over HTTP",
		Long: `Serve a scenario's session over HTTP.

The scenario's network is built but its steps are not played. Clients edit
the session through the API and every edit goes through the undo history:

  GET  /state                      session snapshot
  POST /undo, /redo, /cook
  PUT  /nodes/{id}/settings/{key}  JSON value in the body
  POST /nodes/{id}/lock, /unlock, /visible
  GET  /graph.dot, /graph.svg
  GET  /metrics                    unless metrics = false in the config`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path, listen string) error {
	if listen == "" {
		listen = c.cfg.Listen
	}

	var registry *prometheus.Registry
	if c.cfg.MetricsEnabled() {
		registry = prometheus.NewRegistry()
	}

	// A nil *Registry must not become a non-nil Registerer.
	var reg prometheus.Registerer
	if registry != nil {
		reg = registry
	}
	s, _, err := c.openScenario(ctx, path, reg)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	opts := []server.Option{server.WithLogger(logger)}
	if registry != nil {
		opts = append(opts, server.WithGatherer(registry))
	}

	printInfo(c.out, "Serving %s on %s", path, StyleHighlight.Render("http://"+listen))
	printDetail(c.out, "press ctrl+c to stop")
	return server.New(s, opts...).Run(ctx, listen)
}
