package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site data directory for local preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}
			if a.cfg.App.Env == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           router.NewPreviewEngine(a.cfg.Web.OutputDir, a.log),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("Serving site data",
					zap.String("addr", addr),
					zap.String("data_dir", a.cfg.Web.OutputDir),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err, ok := <-errCh:
				if ok {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			a.log.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: serve.addr)")
	return cmd
}
