package profile

import (
	"context"

	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

// Repository defines the storage contract for profiles and their vectors.
type Repository interface {
	Insert(ctx context.Context, p *domprofile.Profile, vec []float32) error
	Get(ctx context.Context, id string) (domprofile.Profile, error)
	Query(ctx context.Context, vec []float32, k int, excludeID string) ([]domprofile.Neighbor, error)
	List(ctx context.Context, limit int) ([]domprofile.Profile, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	Name() string
	Location() string
}

// Embedder vectorizes profile descriptions and search queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
