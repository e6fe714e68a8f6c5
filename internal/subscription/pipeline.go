package subscription

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"extrinsicScope/internal/chain"
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/events"
	"extrinsicScope/internal/extrinsic"
	"extrinsicScope/internal/model"
	"extrinsicScope/internal/storage"
)

// EventsStorageKey is the storage key of System.Events.
const EventsStorageKey = chain.EventsStorageKey

// BlockSource fetches block bodies and storage items by block hash.
type BlockSource interface {
	GetBlock(ctx context.Context, blockHash string) (model.Block, error)
	QueryStorage(ctx context.Context, key, blockHash string) ([]byte, error)
}

// Notifier publishes transaction list changes.
type Notifier interface {
	Notify(event events.TransactionListChanged)
}

// Metrics observes block processing passes.
type Metrics interface {
	ObserveBlock(chainID string, err error, records int, started time.Time)
	ObserveDuplicate(chainID string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveBlock(string, error, int, time.Time) {}
func (nopMetrics) ObserveDuplicate(string)                    {}

type nopNotifier struct{}

func (nopNotifier) Notify(events.TransactionListChanged) {}

// Deps holds the collaborators of a Pipeline.
type Deps struct {
	Source     BlockSource
	Codecs     codec.Provider
	Repository storage.Repository
	Notifier   Notifier
	Metrics    Metrics
	Logger     *zap.Logger
	Now        func() time.Time
}

// Pipeline processes blocks for one account on one chain. Identical
// consecutive block hashes are processed once.
type Pipeline struct {
	processor *extrinsic.Processor
	deps      Deps
	logger    *zap.Logger

	mu       sync.Mutex
	lastHash string
}

func NewPipeline(processor *extrinsic.Processor, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		processor: processor,
		deps:      deps,
		logger: deps.Logger.With(
			zap.String("chain", processor.Chain().ChainID),
			zap.String("account", processor.Account().Hex()),
		),
	}
}

func (p *Pipeline) Account() model.AccountID {
	return p.processor.Account()
}

func (p *Pipeline) Chain() model.Chain {
	return p.processor.Chain()
}

// Process fetches, classifies and persists one block. A hash equal to the
// last accepted one is ignored. Failures are logged and returned; a failed
// hash may be processed again.
func (p *Pipeline) Process(ctx context.Context, blockHash string) error {
	chainID := p.Chain().ChainID
	if !p.accept(blockHash) {
		p.deps.Metrics.ObserveDuplicate(chainID)
		p.logger.Debug("block already processed", zap.String("hash", blockHash))
		return nil
	}

	started := time.Now()
	records, block, err := p.run(ctx, blockHash)
	p.deps.Metrics.ObserveBlock(chainID, err, len(records), started)
	if err != nil {
		p.release(blockHash)
		return err
	}

	p.logger.Info("block processed",
		zap.Uint64("block", block.Number),
		zap.String("hash", blockHash),
		zap.Int("extrinsics", len(block.Extrinsics)),
		zap.Int("matched", len(records)),
	)

	if len(records) > 0 {
		p.deps.Notifier.Notify(events.TransactionListChanged{
			ChainID:     chainID,
			AccountID:   p.Account(),
			BlockNumber: block.Number,
			Count:       len(records),
		})
	}
	return nil
}

func (p *Pipeline) accept(blockHash string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastHash == blockHash {
		return false
	}
	p.lastHash = blockHash
	return true
}

func (p *Pipeline) release(blockHash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastHash == blockHash {
		p.lastHash = ""
	}
}

func (p *Pipeline) run(ctx context.Context, blockHash string) ([]model.TransactionRecord, model.Block, error) {
	if p.deps.Source == nil || p.deps.Codecs == nil || p.deps.Repository == nil {
		return nil, model.Block{}, errors.New("pipeline is not configured")
	}

	var (
		block     model.Block
		rawEvents []byte
		factory   codec.Factory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := p.deps.Source.GetBlock(gctx, blockHash)
		if err != nil {
			return fmt.Errorf("get block: %w", err)
		}
		block = fetched
		return nil
	})
	g.Go(func() error {
		data, err := p.deps.Source.QueryStorage(gctx, EventsStorageKey, blockHash)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		rawEvents = data
		return nil
	})
	g.Go(func() error {
		f, err := p.deps.Codecs.FactoryAt(gctx, blockHash)
		if err != nil {
			return fmt.Errorf("codec factory: %w", err)
		}
		factory = f
		return nil
	})
	if err := g.Wait(); err != nil {
		p.logger.Error("block fetch failed", zap.String("hash", blockHash), zap.Error(err))
		return nil, model.Block{}, err
	}

	eventRecords, err := codec.DecodeEventRecords(factory, rawEvents)
	if err != nil {
		p.logger.Error("block decode failed", zap.String("hash", blockHash), zap.Error(err))
		return nil, block, err
	}

	results := p.classify(block, eventRecords, factory)

	network := p.Chain()
	account := p.Account()
	timestamp := p.deps.Now().UnixMilli()
	records := make([]model.TransactionRecord, 0, len(results))
	for _, result := range results {
		record, ok := NewRecord(result, network, account, timestamp)
		if !ok {
			p.logger.Debug("unknown asset skipped",
				zap.Uint32("index", result.TxIndex),
				zap.Uint32("asset", result.ProcessingResult.AssetID),
			)
			continue
		}
		records = append(records, record)
	}

	if err := p.deps.Repository.SaveBatch(ctx, network.ChainID, account.Hex(), records, nil); err != nil {
		p.logger.Error("persist failed",
			zap.Uint64("block", block.Number),
			zap.String("hash", blockHash),
			zap.Int("records", len(records)),
			zap.Error(err),
		)
		return nil, block, fmt.Errorf("save batch: %w", err)
	}
	return records, block, nil
}

func (p *Pipeline) classify(block model.Block, eventRecords []codec.EventRecord, factory codec.Factory) []model.TransactionSubscriptionResult {
	var results []model.TransactionSubscriptionResult
	for i, data := range block.Extrinsics {
		index := uint32(i)
		result := p.processor.Process(index, data, eventRecords, factory)
		if result == nil {
			continue
		}
		hash := result.ExtrinsicHash
		if len(hash) == 0 {
			hash = codec.ExtrinsicHash(data)
		}
		results = append(results, model.TransactionSubscriptionResult{
			ProcessingResult: *result,
			BlockNumber:      block.Number,
			TxIndex:          index,
			ExtrinsicHash:    hash,
		})
	}
	return results
}

func bigString(value *big.Int) string {
	if value == nil {
		return ""
	}
	return value.String()
}
