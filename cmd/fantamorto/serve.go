package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fantamorto/internal/platform/httpserver"
	"fantamorto/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr     string
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline on a schedule and expose health and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := scheduler.New(schedule, func(ctx context.Context) error {
				_, err := a.runner.Run(ctx)
				return err
			}, scheduler.WithLogger(opts.logger))
			if err != nil {
				return err
			}

			router := httpserver.NewRouter(a.metrics.Registry, a.checks(), opts.logger)
			srv := httpserver.New(addr, router)

			errCh := make(chan error, 1)
			go func() {
				opts.logger.InfoContext(ctx, "http server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			sched.Start(ctx)

			select {
			case <-ctx.Done():
			case err = <-errCh:
			}
			opts.logger.InfoContext(ctx, "shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				opts.logger.ErrorContext(shutdownCtx, "http shutdown failed", "error", serr)
			}
			select {
			case <-sched.Stop().Done():
			case <-shutdownCtx.Done():
				opts.logger.WarnContext(shutdownCtx, "scheduled run still going at shutdown")
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if addr == "" {
			addr = opts.cfg.Server.Addr
		}
		if schedule == "" {
			schedule = opts.cfg.Server.Schedule
		}
		return nil
	}
	return cmd
}
