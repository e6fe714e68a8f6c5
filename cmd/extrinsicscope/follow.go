package main

import (
	"context"
	"errors"
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

func runFollow(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
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

	follower := indexer.NewFollower(indexer.FollowConfig{
		StateName:    a.stateName(),
		PollInterval: cfg.PollInterval,
		Retry:        a.retryPolicy(),
	}, client, a.pipeline(), a.backend.state, a.limiter(), logger)

	logger.Info("follow start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain", a.chain.ChainID),
		zap.String("account", a.account.Hex()),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("store", cfg.Store),
	)

	err = follower.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
