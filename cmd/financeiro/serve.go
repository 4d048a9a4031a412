package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"financeiro/internal/cache"
	apphttp "financeiro/internal/http"
	"financeiro/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = ":" + a.cfg.Port
			}
			return serve(ctx, a, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default \":$PORT\")")
	return cmd
}

// serve runs the HTTP server and a janitor sweeping the snapshot cache and
// the write limiter, until ctx is cancelled or the server fails.
func serve(ctx context.Context, a *app, addr string) error {
	srv := apphttp.NewServer(addr, a.svc, a.logger)
	janitor := cache.NewJanitor(a.logger, a.snapshots, srv.WriteLimits())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting financeiro server",
			"addr", addr,
			log.FieldBackend, a.cfg.DataBackend,
			"ledger", a.svc.Location())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return janitor.Run(gctx, time.Minute)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}
