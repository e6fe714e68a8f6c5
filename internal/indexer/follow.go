package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// FollowConfig holds runtime settings for the follower.
type FollowConfig struct {
	StateName    string
	PollInterval time.Duration
	Retry        RetryPolicy
}

// Follower polls finalized heads and feeds every new block to a pipeline in
// order, saving progress after each block.
type Follower struct {
	cfg      FollowConfig
	heads    HeadSource
	pipeline BlockProcessor
	state    StateStore
	limiter  ratelimit.Limiter
	logger   *zap.Logger
}

// NewFollower builds a Follower with its dependencies. A nil limiter means
// unlimited.
func NewFollower(cfg FollowConfig, heads HeadSource, pipeline BlockProcessor, state StateStore, limiter ratelimit.Limiter, logger *zap.Logger) *Follower {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 6 * time.Second
	}
	return &Follower{
		cfg:      cfg,
		heads:    heads,
		pipeline: pipeline,
		state:    state,
		limiter:  limiter,
		logger:   logger,
	}
}

// Run follows the chain until ctx is done.
func (f *Follower) Run(ctx context.Context) error {
	if f.heads == nil || f.pipeline == nil || f.state == nil {
		return fmt.Errorf("follower is not configured")
	}

	last, ok, err := f.state.LoadState(ctx, f.cfg.StateName)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if ok {
		f.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last))
	}

	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	for {
		next, err := f.Poll(ctx, last, ok)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Error("follow poll failed", zap.Error(err))
		} else {
			last, ok = next, true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll processes the blocks after last up to the finalized head and returns
// the new last processed block. Without a previous block only the head is
// processed.
func (f *Follower) Poll(ctx context.Context, last uint64, hasLast bool) (uint64, error) {
	f.limiter.Take()
	headHash, err := f.heads.FinalizedHead(ctx)
	if err != nil {
		return last, fmt.Errorf("finalized head: %w", err)
	}
	f.limiter.Take()
	head, err := f.heads.BlockNumber(ctx, headHash)
	if err != nil {
		return last, fmt.Errorf("head number: %w", err)
	}

	from := last + 1
	if !hasLast {
		from = head
	}
	if from > head {
		return last, nil
	}

	for number := from; number <= head; number++ {
		hash := headHash
		if number != head {
			f.limiter.Take()
			if hash, err = f.heads.BlockHash(ctx, number); err != nil {
				return last, fmt.Errorf("block hash %d: %w", number, err)
			}
		}

		err := withRetry(ctx, f.cfg.Retry, f.logger, func(ctx context.Context) error {
			return f.pipeline.Process(ctx, hash)
		})
		if err != nil {
			return last, fmt.Errorf("process block %d: %w", number, err)
		}

		if err := f.state.SaveState(ctx, f.cfg.StateName, number); err != nil {
			return last, fmt.Errorf("save state: %w", err)
		}
		last = number
	}
	return last, nil
}
