package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inteiros/GoStack-GoMarketplace/internal/config"
	"github.com/inteiros/GoStack-GoMarketplace/internal/storage"
	"github.com/inteiros/GoStack-GoMarketplace/internal/storage/ledis"
	"github.com/inteiros/GoStack-GoMarketplace/internal/storage/memory"
	"github.com/inteiros/GoStack-GoMarketplace/internal/storage/postgres"
	redisstore "github.com/inteiros/GoStack-GoMarketplace/internal/storage/redis"
)

// Backend is the configured storage with its decorators applied, plus the
// resources that must be released with it.
type Backend struct {
	Store   storage.Store
	Name    string
	closers []func() error
}

// OpenBackend connects to the storage selected by cfg.StorageBackend.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Name: cfg.StorageBackend}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		b.Store = memory.New()

	case config.BackendLedis:
		st, err := ledis.Open(cfg.LedisDataDir)
		if err != nil {
			return nil, err
		}
		b.Store = st
		b.closers = append(b.closers, st.Close)
		logger.Info("opened ledis store", slog.String("data_dir", cfg.LedisDataDir))

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		b.Store = redisstore.New(client, cfg.CartTTLDuration())
		b.closers = append(b.closers, client.Close)
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.PostgresDSN), logger)
		if err != nil {
			return nil, err
		}
		st := postgres.New(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		collector := postgres.NewPoolStatsCollector(pool)
		if err := prometheus.Register(collector); err != nil {
			logger.Warn("postgres pool metrics not registered", slog.String("error", err.Error()))
		}
		b.Store = st
		b.closers = append(b.closers, func() error {
			prometheus.Unregister(collector)
			pool.Close()
			return nil
		})
		logger.Info("connected to PostgreSQL")

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.BreakerEnabled && cfg.StorageBackend != config.BackendMemory {
		b.Store = storage.WithBreaker(b.Store, storage.DefaultBreakerConfig("storage-"+cfg.StorageBackend), logger)
	}
	b.Store = storage.WithTracing(b.Store, cfg.StorageBackend)

	return b, nil
}

// Ping reports whether the backend is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return storage.Ping(ctx, b.Store)
}

// Close releases the backend in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
