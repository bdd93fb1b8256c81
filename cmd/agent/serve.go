package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/adaptive-rag/internal/api"
	"github.com/Divas-Gupta30/adaptive-rag/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		c, err := build(ctx, cfg, logger, m)
		if err != nil {
			return err
		}
		defer c.close()

		srv := api.NewServer(c.engine, api.Config{
			Port:              cfg.Server.Port,
			DefaultMaxRetries: cfg.Agent.MaxRetries,
			RunTimeout:        cfg.RunTimeout(),
		}, logger, api.WithMetrics(m, reg))
		return srv.ListenAndServe(ctx)
	},
}
