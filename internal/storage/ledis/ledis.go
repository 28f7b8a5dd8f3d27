// Package ledis stores values in an embedded LedisDB instance on local disk.
package ledis

import (
	"context"
	"fmt"

	lediscfg "github.com/siddontang/ledisdb/config"
	"github.com/siddontang/ledisdb/ledis"

	"github.com/inteiros/GoStack-GoMarketplace/internal/storage"
)

// Store is a storage.Store backed by database 0 of an embedded Ledis.
type Store struct {
	conn *ledis.Ledis
	db   *ledis.DB
}

// Open opens (creating if needed) the Ledis data directory.
func Open(dataDir string) (*Store, error) {
	cfg := lediscfg.NewConfigDefault()
	cfg.DataDir = dataDir

	conn, err := ledis.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open ledis at %s: %w", dataDir, err)
	}

	db, err := conn.Select(0)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("select ledis db: %w", err)
	}

	return &Store{conn: conn, db: db}, nil
}

// Get returns the value under key or storage.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	v, err := s.db.Get([]byte(key))
	if err != nil {
		return "", fmt.Errorf("ledis get: %w", err)
	}
	if v == nil {
		return "", storage.ErrNotFound
	}
	return string(v), nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("ledis set: %w", err)
	}
	return nil
}

// Close releases the data directory.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}
