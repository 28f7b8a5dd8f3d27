package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inteiros/GoStack-GoMarketplace/internal/storage"
	apperrors "github.com/inteiros/GoStack-GoMarketplace/pkg/errors"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "@GoMarketplace:products"

// ErrNoProvider is returned when the cart is reached outside an open
// provider lifetime.
var ErrNoProvider = apperrors.Unavailable("CART_UNAVAILABLE", "cart must be used within an active provider")

// Options configures a provider.
type Options struct {
	Key            string
	PersistTimeout time.Duration
	MaxTries       uint
	RetryInterval  time.Duration
	Notifier       Notifier
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Key:            DefaultKey,
		PersistTimeout: 5 * time.Second,
		MaxTries:       3,
		RetryInterval:  200 * time.Millisecond,
	}
}

// Provider owns the lifetime of a cart Store.
type Provider struct {
	storage storage.Store
	opts    Options
	logger  *slog.Logger

	mu      sync.RWMutex
	current *Store
}

// NewProvider creates a provider persisting to st. Zero option fields fall
// back to DefaultOptions.
func NewProvider(st storage.Store, opts Options, logger *slog.Logger) *Provider {
	def := DefaultOptions()
	if opts.Key == "" {
		opts.Key = def.Key
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = def.PersistTimeout
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = def.MaxTries
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = def.RetryInterval
	}

	return &Provider{
		storage: st,
		opts:    opts,
		logger:  logger,
	}
}

// Open loads the persisted cart and starts a lifetime. Opening an already
// open provider returns the current store.
func (p *Provider) Open(ctx context.Context) (*Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return p.current, nil
	}

	s := newStore(p.storage, p.opts, p.logger)
	s.Load(ctx)
	s.persist.start()
	p.current = s
	return s, nil
}

// Close ends the lifetime after flushing pending writes. Closing a closed
// provider is a no-op.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	s := p.current
	p.current = nil
	p.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.close(ctx)
}

// Cart returns the store of the open lifetime, or ErrNoProvider.
func (p *Provider) Cart() (*Store, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return nil, ErrNoProvider
	}
	return p.current, nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store carried by ctx. It fails with ErrNoProvider
// when ctx has no store or the store's lifetime has ended.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil || !s.Active() {
		return nil, ErrNoProvider
	}
	return s, nil
}
