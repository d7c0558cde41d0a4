package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/raffaelramalhorosa/techfeed/internal/api"
	"github.com/raffaelramalhorosa/techfeed/internal/poller"
	"github.com/raffaelramalhorosa/techfeed/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh the feed in the background and serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}

	// --- Dependencies ---
	st := store.New()
	poll := poller.New(pipeline, a.prober(), st, a.cfg.Feed.Endpoint, a.cfg.Feed.RefreshInterval, a.logger)
	limiter := rate.NewLimiter(rate.Limit(a.cfg.Server.RefreshRate), a.cfg.Server.RefreshBurst)
	srv := api.New(st, poll, limiter, a.logger)

	httpServer := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		poll.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		a.logger.Info("server started", "address", a.cfg.Server.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
