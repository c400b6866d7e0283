package root

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/api"
	"github.com/AssQ222/PDRPG/internal/metrics"
)

func newServeCmd(g *globals) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API on the loopback interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cmd.Flags().Changed("port") {
				g.cfg.APIPort = port
			}

			m := metrics.New()
			svc, log, cleanup, err := openService(ctx, g, os.Stderr, m)
			if err != nil {
				return err
			}
			defer cleanup()

			router := api.NewRouter(svc, g.cfg, log, m)
			srv, err := api.Listen(g.cfg.Addr(), router, log)
			if err != nil {
				return err
			}
			log.Info("serving",
				zap.String("addr", srv.Addr()),
				zap.String("db", g.cfg.DBPath),
				zap.Int("rate_limit_per_minute", g.cfg.RateLimitPerMinute),
			)
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 3030, "Port to listen on (overrides PDRPG_API_PORT)")

	return cmd
}
