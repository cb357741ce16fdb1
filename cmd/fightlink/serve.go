package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/config"
	"github.com/John-Robertt/fightlink/internal/match"
	"github.com/John-Robertt/fightlink/internal/server"
)

func newServeCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg

			statsClient, err := newStatsClient(cfg)
			if err != nil {
				return err
			}
			srv := &server.Server{
				Stats:   statsClient,
				Matcher: match.New(catalog.Load(cfg.Catalog), cfg.SearchURL),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg.Listen, srv.Handler())
		},
	}
	cmd.Flags().String("listen", config.DefaultListen, "监听地址")
	return cmd
}
