package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/inteiros/GoStack-GoMarketplace/internal/cart"
	"github.com/inteiros/GoStack-GoMarketplace/internal/config"
	"github.com/inteiros/GoStack-GoMarketplace/internal/event"
	handler "github.com/inteiros/GoStack-GoMarketplace/internal/handler/http"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/health"
	pkgkafka "github.com/inteiros/GoStack-GoMarketplace/pkg/kafka"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/tracing"
)

// ServiceName labels logs, traces and metrics.
const ServiceName = "cart"

// App wires together all dependencies and runs the cart service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	backend        *Backend
	provider       *cart.Provider
	producer       *pkgkafka.Producer
	shutdownTracer tracing.ShutdownFunc
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// The cart itself is loaded when Run starts.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("open storage: %w", err)
	}

	opts := ProviderOptions(cfg)

	var producer *pkgkafka.Producer
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		opts.Notifier = event.NewProducer(producer, cfg.StorageKey, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	provider := cart.NewProvider(backend.Store, opts, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("storage", backend.Ping)
	healthHandler.Register("cart", func(context.Context) error {
		_, err := provider.Cart()
		return err
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(provider, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		backend:        backend,
		provider:       provider,
		producer:       producer,
		shutdownTracer: shutdownTracer,
		httpServer:     httpServer,
	}, nil
}

// ProviderOptions maps configuration onto cart provider options.
func ProviderOptions(cfg *config.Config) cart.Options {
	opts := cart.DefaultOptions()
	opts.Key = cfg.StorageKey
	opts.PersistTimeout = cfg.PersistTimeout
	opts.MaxTries = cfg.PersistMaxTries
	return opts
}

// Handler returns the HTTP handler served by Run.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run loads the cart, starts the HTTP server and blocks until the context is
// canceled.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.provider.Open(ctx); err != nil {
		return fmt.Errorf("open cart: %w", err)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. Pending cart writes are flushed
// before storage is closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Storage stays open while the cart writer may still be running.
	cartErr := a.provider.Close(shutdownCtx)
	if cartErr != nil {
		a.logger.Error("cart close error", slog.String("error", cartErr.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if cartErr == nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("storage close error", slog.String("error", err.Error()))
		}
	} else {
		a.logger.Warn("leaving storage open, cart writes still in flight")
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
