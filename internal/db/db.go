// Package db is the storage facade over Redis-compatible servers with the
// search module (Redis 8+, Valkey with valkey-search).
package db

import (
	"context"
	"time"
)

// Store is everything the profile repository and the embedding cache need
// from one server. Consumers declare their own narrower interfaces.
//
//nolint:interfacebloat // facade; consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore keeps one profile per HASH key.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll returns an empty map for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// Del removes key and reports whether it existed.
	Del(ctx context.Context, key string) (bool, error)
}

// KVStore backs the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager creates the collection index on startup. Indexes are never dropped.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
