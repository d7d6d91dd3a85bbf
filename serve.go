package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	nest "github.com/km-arc/go-nest/framework/app"
	"github.com/km-arc/go-nest/framework/config"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :APP_PORT)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := a.Close(closeCtx); err != nil {
				a.Logger().Warn("close failed", zap.Error(err))
			}
		}()

		addr := serveAddr
		if addr == "" {
			cfg, err := nest.Get[*config.Config](ctx, a, config.Token)
			if err != nil {
				return err
			}
			addr = cfg.Addr()
		}
		return a.Listen(ctx, addr)
	},
}
