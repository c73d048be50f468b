package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/citeview/internal/logging"
	"github.com/csheth/citeview/internal/relay"
)

func relayCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Serve the HTTP relay that forwards ?query= requests to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Relay.Addr
			}
			logger, err := logging.New(logging.Options{
				File:    cfg.Log.File,
				Level:   cfg.Log.Level,
				Console: os.Stderr,
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cfg.Backend.URL == "" {
				logger.Warn("backend URL not configured; every query will fail with 500")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := relay.NewServer(relay.Config{
				BackendURL: cfg.Backend.URL,
				Timeout:    cfg.Backend.Timeout,
				Logger:     logger,
			})
			if err := server.Run(ctx, addr); err != nil {
				logger.Error("relay stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from relay.addr)")
	return cmd
}
