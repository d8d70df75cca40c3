package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/abacus/internal/cli"
	httpAdapter "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes the calculator and its history as a JSON API over HTTP.
The OpenAPI document is served on /openapi.yaml and Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		cfg := rt.Config
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.HTTP.Metrics, _ = cmd.Flags().GetBool("metrics")
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(rt.Logger),
			httpAdapter.WithHistoryLimit(cfg.HistoryLimit),
		}
		if cfg.HTTP.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(rt.Registry))
		}
		handler, err := httpAdapter.NewHandler(rt.Calculator, opts...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Serve(ctx, cfg.HTTP.Addr, handler, rt.Logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().Bool("metrics", true, "Serve Prometheus metrics on /metrics")
}
