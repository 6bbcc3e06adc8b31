package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettevision/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dominant colour HTTP API",
		Long: `Serve the dominant colour HTTP API.

Endpoints:
  GET  /healthz                  liveness and version
  POST /dominant-colors          multipart upload ("file" plus optional
                                 format, algorithm, k, top_n and
                                 include_percentage fields)
  POST /dominant-colors/base64   JSON body {"image_base64": "...", ...}

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.cfg, a.newExtractor(), server.WithLogger(a.logger.Named("server")))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, \":8000\")")

	return cmd
}
