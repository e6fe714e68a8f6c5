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
	"extrinsicScope/internal/metrics"
	"extrinsicScope/internal/subscription"
)

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hashes := append(cfg.Hashes, args...)

	var source subscription.BlockSource
	if cfg.BlocksFile != "" {
		fileSource, err := chain.LoadFile(cfg.BlocksFile)
		if err != nil {
			return err
		}
		if len(hashes) == 0 {
			hashes = fileSource.Hashes()
		}
		source = fileSource
	} else {
		if cfg.RPCURL == "" {
			return fmt.Errorf("rpc url or blocks file is required")
		}
		client, err := chain.NewClient(ctx, cfg.RPCURL, metrics.NewRPCClient(cfg.ChainID))
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer client.Close()
		source = client
	}
	if len(hashes) == 0 {
		return fmt.Errorf("at least one block hash is required")
	}

	a, err := newApp(ctx, cfg, logger, source)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("process start",
		zap.String("chain", a.chain.ChainID),
		zap.String("account", a.account.Hex()),
		zap.Int("blocks", len(hashes)),
		zap.String("store", cfg.Store),
	)

	failed := 0
	pipeline := a.pipeline()
	for _, hash := range hashes {
		if err := pipeline.Process(ctx, hash); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d blocks failed", failed, len(hashes))
	}
	return nil
}
