// Package redis implements db.Store over rueidis. Redis 8+ and Valkey with
// valkey-search share the FT.CREATE and KNN dialect profiles need. They differ
// on match-all queries: valkey-search rejects FT.SEARCH without KNN, so a
// Valkey store lists and counts by SCAN over the key prefix instead.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/profilematch/internal/db"
)

var _ db.Store = (*Store)(nil)

// readyPollInterval is how often WaitForReady pings.
const readyPollInterval = 100 * time.Millisecond

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// Valkey switches match-all listing and counting to SCAN.
	Valkey bool
}

// Store is a db.Store backed by one rueidis client.
type Store struct {
	client rueidis.Client
	addrs  []string
	valkey bool
}

// NewStore builds the client. rueidis connects eagerly, so an unreachable
// server fails here.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH replies are parsed as RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", strings.Join(cfg.Addrs, ","), err)
	}
	return &Store{client: client, addrs: cfg.Addrs, valkey: cfg.Valkey}, nil
}

// Addr returns the configured addresses, comma separated.
func (s *Store) Addr() string {
	return strings.Join(s.addrs, ",")
}

// Ping implements db.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers or timeout passes. The search
// module may still be loading right after the container starts.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database (last error: %v): %w", lastErr, ctx.Err())
		case <-time.After(readyPollInterval):
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error mentioning substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
