package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/classiccarrry/classic-carrry-admin/internal/api"
	"github.com/classiccarrry/classic-carrry-admin/internal/config"
	"github.com/classiccarrry/classic-carrry-admin/internal/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console's HTTP API and health gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var webFS fs.FS
	if a.cfg.UIDir != "" {
		webFS = os.DirFS(a.cfg.UIDir)
	}
	handler := api.NewRouter(&api.Server{
		Gate:          a.gate,
		Notifications: a.notes,
		Views:         a.views,
		Client:        a.client,
		Dashboard:     a.dashboard,
		Settings:      a.settings,
		Metrics:       a.metrics,
		Logger:        a.logger.Named("api"),
	}, webFS)
	srv := &http.Server{Addr: a.cfg.Listen, Handler: handler}

	events, unsubscribe := a.gate.Subscribe()
	defer unsubscribe()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.gate.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		// Site settings follow the signed-in administrator.
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if ev.Phase == session.PhaseAuthenticated {
					a.settings.Load(ctx)
				}
			}
		}
	})
	g.Go(func() error {
		a.logger.Info("console listening",
			zap.String("listen", a.cfg.Listen), zap.String("api", a.client.BaseURL()), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving %s: %w", a.cfg.Listen, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
