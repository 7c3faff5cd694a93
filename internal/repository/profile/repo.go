// Package profile stores profiles as Redis/Valkey hashes indexed by FT.CREATE
// with an HNSW cosine vector field.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/db"
	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

const keyPrefix = "profilematch:"

// store is the consumer interface for profiles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Config describes the collection backing a Repo.
type Config struct {
	Collection string
	Dimensions int
	// Location is reported by Stats as the persistence location.
	Location string
	HNSW     HNSWConfig
	// NativeExclusion pushes exclude_id into the FT.SEARCH pre-filter.
	// Off for Valkey, where results are post-filtered only.
	NativeExclusion bool
}

// Repo implements usecase/profile.Repository over a Redis-compatible store.
type Repo struct {
	store store
	cfg   Config
}

// New creates a profile repository.
func New(s store, cfg Config) *Repo {
	if cfg.HNSW.M <= 0 {
		cfg.HNSW.M = 16
	}
	if cfg.HNSW.EFConstruct <= 0 {
		cfg.HNSW.EFConstruct = 200
	}
	return &Repo{store: s, cfg: cfg}
}

// Open creates the collection index unless it already exists.
func (r *Repo) Open(ctx context.Context) error {
	name := r.indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(name).
		Prefix(r.keyPrefix()).
		Tag(fieldID).
		Numeric(fieldAge).
		VectorHNSW(fieldVector, r.cfg.Dimensions, db.DistanceCosine, r.cfg.HNSW.M, r.cfg.HNSW.EFConstruct).
		As(vectorAlias).
		Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", name, err)
	}

	// Concurrent starters may race on creation.
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("%s: %w", def, err)
	}
	return nil
}

// Insert writes a profile and its vector. An existing entry with the same ID is overwritten.
func (r *Repo) Insert(ctx context.Context, p *domprofile.Profile, vec []float32) error {
	if len(vec) != r.cfg.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vec), r.cfg.Dimensions)
	}
	key := r.key(p.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(p, vec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a profile by ID.
func (r *Repo) Get(ctx context.Context, id string) (domprofile.Profile, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domprofile.Profile{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domprofile.Profile{}, domain.ErrProfileNotFound
	}
	return parseHashFields(id, m), nil
}

// Query returns up to k nearest profiles to vec, nearest first, never including excludeID.
func (r *Repo) Query(ctx context.Context, vec []float32, k int, excludeID string) ([]domprofile.Neighbor, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		VectorField:  vectorAlias,
		Vector:       vec,
		K:            domprofile.FetchSize(k, excludeID),
		ReturnFields: returnFields,
	}
	if excludeID != "" && r.cfg.NativeExclusion {
		q.Exclude = []db.TagFilter{{Field: fieldID, Value: excludeID}}
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.cfg.Collection, err)
	}

	neighbors := make([]domprofile.Neighbor, 0, len(res.Entries))
	for _, e := range res.Entries {
		neighbors = append(neighbors, domprofile.Neighbor{
			Profile:  parseHashFields(r.idFromKey(e.Key), e.Fields),
			Distance: e.Score,
		})
	}
	return domprofile.TrimNeighbors(neighbors, k, excludeID), nil
}

// List returns up to limit profiles in index order.
func (r *Repo) List(ctx context.Context, limit int) ([]domprofile.Profile, error) {
	res, err := r.store.SearchList(ctx, r.indexName(), "*", 0, limit, returnFields)
	if err != nil {
		return nil, fmt.Errorf("search list %s: %w", r.cfg.Collection, err)
	}
	out := make([]domprofile.Profile, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, parseHashFields(r.idFromKey(e.Key), e.Fields))
	}
	return out, nil
}

// Delete removes a profile and reports whether it existed.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	key := r.key(id)
	removed, err := r.store.Del(ctx, key)
	if err != nil {
		return false, fmt.Errorf("del %s: %w", key, err)
	}
	return removed, nil
}

// Count returns the number of indexed profiles.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", r.cfg.Collection, err)
	}
	return n, nil
}

// Name returns the collection name.
func (r *Repo) Name() string { return r.cfg.Collection }

// Location returns where the collection is persisted.
func (r *Repo) Location() string { return r.cfg.Location }

func (r *Repo) keyPrefix() string {
	return keyPrefix + r.cfg.Collection + ":"
}

func (r *Repo) key(id string) string {
	return r.keyPrefix() + id
}

func (r *Repo) indexName() string {
	return keyPrefix + r.cfg.Collection + ":idx"
}

func (r *Repo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix())
}
