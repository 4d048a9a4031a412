package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"financeiro/internal/amqp"
	"financeiro/internal/analytics"
	"financeiro/internal/backend"
	"financeiro/internal/cache"
	"financeiro/internal/cli"
	"financeiro/internal/config"
	"financeiro/internal/ledger"
	"financeiro/internal/log"
	"financeiro/internal/services"
)

const snapshotCacheSize = 16

// app bundles what a subcommand needs to operate on the ledger.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	svc       *services.TransactionService
	snapshots *cache.LRUCache[analytics.Summary]
}

// newApp loads configuration, opens the configured backend and loads the
// ledger. An unreadable ledger is logged and starts empty. AMQP publishing
// is only wired when publish is set and AMQP_URL is configured.
func newApp(ctx context.Context, cmd *cobra.Command, flags *rootFlags, publish bool) (*app, error) {
	cfg, err := cli.LoadAndValidateConfig(flags.apply)
	if err != nil {
		return nil, err
	}

	logger, err := cli.SetupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open ledger backend: %w", err)
	}

	store := ledger.Open(ctx, res.Repository, logger)

	var publisher services.Publisher
	if publish && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, events will not be published", log.FieldError, err)
		} else {
			publisher = client
		}
	}

	snapshots := cache.NewLRUCache[analytics.Summary](snapshotCacheSize, cfg.CacheTTL)

	return &app{
		cfg:       cfg,
		logger:    logger,
		svc:       services.NewTransactionService(store, publisher, snapshots, logger),
		snapshots: snapshots,
	}, nil
}

func (a *app) close() {
	if err := a.svc.Close(); err != nil {
		a.logger.Error("Failed to close ledger", log.FieldError, err)
	}
}
