package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/server"
	"github.com/magic-city-guide/poi-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the datasets over a JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		// The store is optional here; without one the API serves the CSV
		// files directly.
		var st store.Store
		if cfg.Store.DatabaseURL != "" {
			s, err := initStore(ctx)
			if err != nil {
				zap.L().Warn("store unavailable, serving from csv", zap.Error(err))
			} else {
				defer s.Close() //nolint:errcheck
				if err := s.Migrate(ctx); err != nil {
					zap.L().Warn("store migrate failed, serving from csv", zap.Error(err))
				} else {
					st = s
				}
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		return server.New(st, cfg.Data.Dir, port).Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
