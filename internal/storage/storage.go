// Package storage defines the string-keyed store the cart persists to and
// the decorators shared by every backend.
package storage

import (
	"context"
	"fmt"

	apperrors "github.com/inteiros/GoStack-GoMarketplace/pkg/errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = fmt.Errorf("storage: key %w", apperrors.ErrNotFound)

// Store is an opaque key-value store holding string values.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s when it (or the store it decorates) supports it. Stores
// without a connection report healthy.
func Ping(ctx context.Context, s Store) error {
	for s != nil {
		if p, ok := s.(Pinger); ok {
			return p.Ping(ctx)
		}
		u, ok := s.(interface{ Unwrap() Store })
		if !ok {
			return nil
		}
		s = u.Unwrap()
	}
	return nil
}
