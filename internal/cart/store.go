// Package cart holds the shopping cart state and mirrors every change to a
// storage backend in the background.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/inteiros/GoStack-GoMarketplace/internal/domain"
	"github.com/inteiros/GoStack-GoMarketplace/internal/storage"
)

// Store is the in-memory cart for one provider lifetime. Mutators return
// immediately; persistence is best effort and eventually reflects the latest
// state.
type Store struct {
	storage storage.Store
	key     string
	logger  *slog.Logger
	persist *persister

	mu     sync.Mutex
	cart   domain.Cart
	closed bool
}

func newStore(st storage.Store, opts Options, logger *slog.Logger) *Store {
	return &Store{
		storage: st,
		key:     opts.Key,
		logger:  logger,
		persist: newPersister(st, opts, logger),
		cart:    domain.Cart{},
	}
}

// Load replaces the cart with the persisted one. Missing, unreadable or
// malformed data leaves the cart empty.
func (s *Store) Load(ctx context.Context) {
	loaded := s.read(ctx)

	s.mu.Lock()
	s.cart = loaded
	s.mu.Unlock()
}

func (s *Store) read(ctx context.Context) domain.Cart {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.InfoContext(ctx, "no persisted cart, starting empty", slog.String("key", s.key))
		} else {
			s.logger.ErrorContext(ctx, "failed to read persisted cart, starting empty",
				slog.String("key", s.key),
				slog.String("error", err.Error()),
			)
		}
		return domain.Cart{}
	}

	c, err := domain.Decode([]byte(raw))
	if err != nil {
		s.logger.WarnContext(ctx, "discarding malformed persisted cart",
			slog.String("key", s.key),
			slog.Int("bytes", len(raw)),
			slog.String("error", err.Error()),
		)
		return domain.Cart{}
	}

	s.logger.InfoContext(ctx, "cart loaded",
		slog.String("key", s.key),
		slog.Int("items", len(c)),
		slog.Int("item_count", c.ItemCount()),
	)
	return c
}

// AddToCart adds p with quantity 1, or increments it when already present.
func (s *Store) AddToCart(ctx context.Context, p domain.Product) {
	s.mutate(ctx, opAdd, func(c domain.Cart) domain.Cart { return c.Add(p) })
}

// Increment raises the quantity of the product with id. Unknown ids are ignored.
func (s *Store) Increment(ctx context.Context, id string) {
	s.mutate(ctx, opIncrement, func(c domain.Cart) domain.Cart { return c.Increment(id) })
}

// Decrement lowers the quantity of the product with id, stopping at zero.
func (s *Store) Decrement(ctx context.Context, id string) {
	s.mutate(ctx, opDecrement, func(c domain.Cart) domain.Cart { return c.Decrement(id) })
}

// mutate applies fn and schedules the resulting state for persistence in the
// same critical section, so the write order always matches the mutation order.
func (s *Store) mutate(ctx context.Context, op string, fn func(domain.Cart) domain.Cart) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "cart mutation after provider closed, dropped", slog.String("operation", op))
		return
	}
	s.cart = fn(s.cart)
	s.persist.schedule(ctx, s.cart)
	s.mu.Unlock()

	operationsTotal.WithLabelValues(op).Inc()
}

// Products returns a copy of the current cart.
func (s *Store) Products() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Flush blocks until every mutation made before the call has been written
// (or has exhausted its retries).
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// Active reports whether the store's provider lifetime is still open.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *Store) close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.persist.close(ctx)
}
