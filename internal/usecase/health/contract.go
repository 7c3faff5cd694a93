package health

import (
	"context"

	"github.com/kailas-cloud/profilematch/internal/usecase/profile"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// StatsReader reports collection statistics.
type StatsReader interface {
	Stats(ctx context.Context) (profile.Stats, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
