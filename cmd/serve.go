package cmd

import (
	"github.com/getlawrence/prdgate/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve PRD decisions over HTTP",
	Long: `Serve exposes the PRD decision rule as a JSON API together with health and
Prometheus metrics endpoints.

Endpoints:
  POST /v1/decisions  {"backlog": "...", "item_id": "W-12"}
  POST /v1/scan       {"backlog": "...", "item_ids": ["W-12"]}
  GET  /healthz
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (defaults to addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	app := appConfigFrom(cmd)
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = app.Config.Addr
	}

	srv := server.New(app.Config.Policy(), app.Logger,
		server.WithRateLimit(app.Config.RateLimit, app.Config.RateBurst))
	return srv.Run(cmd.Context(), addr)
}
