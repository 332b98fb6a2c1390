package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/classiccarrry/classic-carrry-admin/internal/config"
	"github.com/classiccarrry/classic-carrry-admin/internal/dashboard"
	"github.com/classiccarrry/classic-carrry-admin/internal/metrics"
	"github.com/classiccarrry/classic-carrry-admin/internal/notify"
	"github.com/classiccarrry/classic-carrry-admin/internal/session"
	"github.com/classiccarrry/classic-carrry-admin/internal/settings"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
	"github.com/classiccarrry/classic-carrry-admin/internal/viewmodel"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "carrry-admin",
		Short:        "Classic Carrry storefront admin console",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	cfg := config.Bind(root.PersistentFlags())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return cfg.Load()
	}

	root.AddCommand(
		newServeCmd(cfg),
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg),
		newHealthCmd(cfg),
		newListCmd(cfg),
		newDeleteCmd(cfg),
		newToggleCmd(cfg),
		newDashboardCmd(cfg),
	)
	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// app wires the console's services from configuration. Every command builds
// one; only serve keeps it running.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	session   *session.Session
	client    *storefront.Client
	gate      *session.Gate
	notes     *notify.Channel
	views     *viewmodel.Registry
	dashboard *dashboard.Service
	settings  *settings.Service
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}

	statePath := cfg.StateFile
	if statePath == "" {
		if statePath, err = session.DefaultStatePath(); err != nil {
			return nil, err
		}
	}
	sess, err := session.New(session.NewFileStore(statePath))
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	client := storefront.NewClient(storefront.Options{
		BaseURL:      cfg.APIURL,
		Insecure:     cfg.Insecure,
		ProbeTimeout: cfg.ProbeTimeout,
		Tokens:       sess,
		Metrics:      m,
		Logger:       logger.Named("storefront"),
	})
	notes := notify.New(cfg.NotificationTTL, logger.Named("notify"))
	views := viewmodel.NewRegistry(viewmodel.Deps{
		Remote:   client,
		Notifier: notes,
		Metrics:  m,
		Logger:   logger.Named("views"),
	}).WithStats("contacts", func(ctx context.Context) (interface{}, error) {
		return client.ContactStats(ctx)
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		session:   sess,
		client:    client,
		gate:      session.NewGate(sess, client, cfg.ProbeInterval, logger.Named("gate")),
		notes:     notes,
		views:     views,
		dashboard: dashboard.New(client, logger.Named("dashboard")),
		settings:  settings.New(client, notes, logger.Named("settings")),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
