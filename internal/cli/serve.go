package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pure-justin/power-to-the-people-sub003/internal/config"
	"github.com/pure-justin/power-to-the-people-sub003/internal/httpapi"
	"github.com/pure-justin/power-to-the-people-sub003/internal/slapolicy"
	"github.com/pure-justin/power-to-the-people-sub003/internal/sweep"
)

// ServeCmd returns the command that runs the marketplace API server with
// both background sweeps.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the marketplace HTTP API and background sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	slog.Info("starting marketd",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_type", cfg.StoreType,
	)

	rt, shutdown, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	sweepCtx, cancelSweeps := context.WithCancel(ctx)
	defer cancelSweeps()

	bidWindow := sweep.NewBidWindowSweep(rt.svc, rt.store)
	sweep.NewRunner("bid_window", cfg.BidWindowSweepInterval, func(ctx context.Context) error {
		_, err := bidWindow.Run(ctx)
		return err
	}).Start(sweepCtx)

	sla := sweep.NewSLASweep(rt.svc, rt.store, policy, rt.dispatcher)
	sweep.NewRunner("sla", cfg.SLASweepInterval, func(ctx context.Context) error {
		_, err := sla.Run(ctx)
		return err
	}).Start(sweepCtx)

	handlers := httpapi.NewHandlers(rt.svc)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(handlers, cfg.JWTSecret, cfg.Development()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	cancelSweeps()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

func loadPolicy(cfg *config.Config) (slapolicy.Provider, error) {
	if cfg.SLAPolicyPath == "" {
		return slapolicy.NewTablePolicy(), nil
	}
	policy, err := slapolicy.LoadTablePolicy(cfg.SLAPolicyPath)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded sla policy", "path", cfg.SLAPolicyPath)
	return policy, nil
}
