package indexer

import (
	"context"
	"fmt"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"extrinsicScope/internal/workerpool"
)

// BackfillConfig holds runtime settings for a backfill.
type BackfillConfig struct {
	FromBlock uint64
	ToBlock   uint64
	BatchSize uint64
	Workers   int
	StateName string
	Retry     RetryPolicy
}

// Backfill processes an inclusive block range batch by batch. Blocks of a
// batch run concurrently; progress is saved after each complete batch.
type Backfill struct {
	cfg      BackfillConfig
	heads    HeadSource
	pipeline BlockProcessor
	state    StateStore
	limiter  ratelimit.Limiter
	logger   *zap.Logger
}

func NewBackfill(cfg BackfillConfig, heads HeadSource, pipeline BlockProcessor, state StateStore, limiter ratelimit.Limiter, logger *zap.Logger) *Backfill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backfill{
		cfg:      cfg,
		heads:    heads,
		pipeline: pipeline,
		state:    state,
		limiter:  limiter,
		logger:   logger,
	}
}

// Run executes the backfill. A ToBlock of zero means the finalized head.
func (b *Backfill) Run(ctx context.Context) error {
	if b.heads == nil || b.pipeline == nil {
		return fmt.Errorf("backfill is not configured")
	}

	from := b.cfg.FromBlock
	to := b.cfg.ToBlock
	if to == 0 {
		headHash, err := b.heads.FinalizedHead(ctx)
		if err != nil {
			return fmt.Errorf("finalized head: %w", err)
		}
		if to, err = b.heads.BlockNumber(ctx, headHash); err != nil {
			return fmt.Errorf("head number: %w", err)
		}
	}

	if b.state != nil {
		last, ok, err := b.state.LoadState(ctx, b.cfg.StateName)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		if ok && last >= from {
			from = last + 1
			b.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		b.logger.Info("nothing to backfill", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, b.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		b.logger.Info("backfill batch", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		err := workerpool.Process(ctx, b.cfg.Workers, blockRange.Numbers(), b.limiter, b.processNumber)
		if err != nil {
			return err
		}

		if b.state != nil {
			if err := b.state.SaveState(ctx, b.cfg.StateName, blockRange.To); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}
	}

	b.logger.Info("backfill complete", zap.Uint64("from", from), zap.Uint64("to", to))
	return nil
}

func (b *Backfill) processNumber(ctx context.Context, number uint64) error {
	hash, err := b.heads.BlockHash(ctx, number)
	if err != nil {
		return fmt.Errorf("block hash %d: %w", number, err)
	}
	err = withRetry(ctx, b.cfg.Retry, b.logger, func(ctx context.Context) error {
		return b.pipeline.Process(ctx, hash)
	})
	if err != nil {
		return fmt.Errorf("process block %d: %w", number, err)
	}
	return nil
}
