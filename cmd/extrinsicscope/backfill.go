package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"extrinsicScope/internal/chain"
	"extrinsicScope/internal/indexer"
	"extrinsicScope/internal/metrics"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	serveMetrics(ctx, cfg.MetricsAddr, logger)

	client, err := chain.NewClient(ctx, cfg.RPCURL, metrics.NewRPCClient(cfg.ChainID))
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	a, err := newApp(ctx, cfg, logger, client)
	if err != nil {
		return err
	}
	defer a.Close()

	backfill := indexer.NewBackfill(indexer.BackfillConfig{
		FromBlock: cfg.FromBlock,
		ToBlock:   cfg.ToBlock,
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		StateName: a.stateName(),
		Retry:     a.retryPolicy(),
	}, client, a.pipeline(), a.backend.state, a.limiter(), logger)

	logger.Info("backfill start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain", a.chain.ChainID),
		zap.String("account", a.account.Hex()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("workers", cfg.Workers),
		zap.String("store", cfg.Store),
	)

	return backfill.Run(ctx)
}
