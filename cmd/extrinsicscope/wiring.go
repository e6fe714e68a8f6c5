package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/config"
	"extrinsicScope/internal/events"
	"extrinsicScope/internal/extrinsic"
	"extrinsicScope/internal/indexer"
	"extrinsicScope/internal/metrics"
	"extrinsicScope/internal/model"
	"extrinsicScope/internal/storage"
	"extrinsicScope/internal/storage/pebbledb"
	"extrinsicScope/internal/storage/postgres"
	"extrinsicScope/internal/subscription"
)

type store interface {
	storage.Repository
	storage.Reader
}

// backend is an opened storage backend with its progress store.
type backend struct {
	store store
	state indexer.StateStore
	close func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.Store {
	case config.StoreJSONL:
		return &backend{
			store: storage.NewJsonlStorage(cfg.Out),
			state: indexer.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled),
			close: func() {},
		}, nil
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &backend{store: pg, state: pg, close: pg.Close}, nil
	case config.StorePebble:
		db, err := pebbledb.Open(cfg.PebbleDir)
		if err != nil {
			return nil, fmt.Errorf("open pebble: %w", err)
		}
		return &backend{store: db, state: db, close: func() { _ = db.Close() }}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// loadConfig loads and validates the configuration of cmd.
func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// app holds the components shared by the processing commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	account  model.AccountID
	chain    model.Chain
	backend  *backend
	bus      *events.Bus
	registry *subscription.Registry
	stopBus  func()
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, source subscription.BlockSource) (*app, error) {
	account, err := cfg.AccountID()
	if err != nil {
		return nil, err
	}
	chain, err := cfg.Chain()
	if err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	_, notifications, cancel := bus.Subscribe(events.Filter{ChainID: chain.ChainID}, 0)
	go func() {
		for event := range notifications {
			logger.Info("transaction list changed",
				zap.String("chain", event.ChainID),
				zap.String("account", event.AccountID.Hex()),
				zap.Uint64("block", event.BlockNumber),
				zap.Int("count", event.Count),
			)
		}
	}()

	pipelineMetrics := metrics.NewPipeline()
	codecs := codec.StaticProvider{Factory: codec.NewJSONFactory(cfg.SpecVersion)}
	registry := subscription.NewRegistry(func(account model.AccountID, chain model.Chain) *subscription.Pipeline {
		processor := extrinsic.NewProcessor(account, chain, logger, extrinsic.WithObserver(pipelineMetrics))
		return subscription.NewPipeline(processor, subscription.Deps{
			Source:     source,
			Codecs:     codecs,
			Repository: b.store,
			Notifier:   bus,
			Metrics:    pipelineMetrics,
			Logger:     logger,
		})
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		account:  account,
		chain:    chain,
		backend:  b,
		bus:      bus,
		registry: registry,
		stopBus:  cancel,
	}, nil
}

func (a *app) pipeline() *subscription.Pipeline {
	return a.registry.GetOrCreate(a.account, a.chain)
}

func (a *app) stateName() string {
	return indexer.StateName(a.chain.ChainID, a.account.Hex())
}

func (a *app) limiter() ratelimit.Limiter {
	if a.cfg.RateLimit <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(a.cfg.RateLimit)
}

func (a *app) retryPolicy() indexer.RetryPolicy {
	return indexer.RetryPolicy{MaxRetries: a.cfg.MaxRetries, Backoff: a.cfg.RetryBackoff}
}

func (a *app) Close() {
	a.stopBus()
	a.backend.close()
	published, delivered, dropped := a.bus.Stats()
	a.logger.Debug("notifications",
		zap.Uint64("published", published),
		zap.Uint64("delivered", delivered),
		zap.Uint64("dropped", dropped),
	)
}

// serveMetrics exposes Prometheus metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("metrics server start", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}
