/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockdb/pkg/api"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the record REST API server. Requests must carry the configured
X-API-Key header when an API key is set. Prometheus metrics are served at /metrics.

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  stock serve
  stock serve --bind 0.0.0.0 --port 9000 --api-key mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			server := a.config.Server
			if cmd.Flags().Changed("bind") {
				server.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("port") {
				server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("api-key") {
				server.APIKey, _ = cmd.Flags().GetString("api-key")
			}
			if server.APIKey == "" {
				log.Warning("no API key configured, the API is open to anyone who can reach it")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.StartServer(ctx, a.store, api.ServerConfig{
				Bind:   server.Bind,
				Port:   server.Port,
				APIKey: server.APIKey,
			})
		},
	}

	serveCmd.Flags().String("bind", "", "Address to bind (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (default from config)")
	return serveCmd
}
