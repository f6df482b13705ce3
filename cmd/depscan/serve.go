package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"depscan/internal/config"
	"depscan/internal/telemetry"
	"depscan/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan API server",
	Long: `Starts an HTTP server exposing the scan pipeline: a JSON scan
endpoint, a Server-Sent Events stream for live progress, export
endpoints and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.FromViper()
		if servePort != 0 {
			settings.Port = servePort
		}

		metrics := telemetry.NewMetrics()
		sc, gh, cleanup := buildScanner(settings, metrics)
		defer cleanup()

		// Scrape endpoint on its own port, so the API server can sit
		// behind auth without hiding metrics from Prometheus.
		if settings.MetricsPort != 0 && settings.MetricsPort != settings.Port {
			go func() {
				addr := fmt.Sprintf("127.0.0.1:%d", settings.MetricsPort)
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				slog.Info("starting metrics server", "addr", addr)
				if err := http.ListenAndServe(addr, mux); err != nil {
					slog.Error("metrics server failed", "error", err)
				}
			}()
		}

		server := web.NewServer(sc, gh, metrics, settings.Port)
		return server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config)")
}
