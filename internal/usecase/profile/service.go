package profile

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/match"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

// Limits.
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 50
	DefaultListLimit   = 100
	MaxListLimit       = 1000
)

// Stats describes the profile collection.
type Stats struct {
	TotalProfiles   int
	CollectionName  string
	PersistLocation string
}

// Service adds profiles, looks them up and ranks matches by description similarity.
type Service struct {
	repo     Repository
	embedder Embedder
	newID    func() string
	now      func() time.Time

	maxSearchLimit   int
	defaultListLimit int
	maxListLimit     int
}

// New creates a profile service.
func New(repo Repository, embedder Embedder) *Service {
	return &Service{
		repo:             repo,
		embedder:         embedder,
		newID:            uuid.NewString,
		now:              time.Now,
		maxSearchLimit:   MaxSearchLimit,
		defaultListLimit: DefaultListLimit,
		maxListLimit:     MaxListLimit,
	}
}

// WithLimits tightens search and list limits. Non-positive values keep the
// defaults; the ceilings MaxSearchLimit and MaxListLimit cannot be raised.
func (s *Service) WithLimits(maxSearch, defaultList, maxList int) *Service {
	if maxSearch > 0 {
		s.maxSearchLimit = min(maxSearch, MaxSearchLimit)
	}
	if maxList > 0 {
		s.maxListLimit = min(maxList, MaxListLimit)
	}
	if defaultList > 0 {
		s.defaultListLimit = defaultList
	}
	s.defaultListLimit = min(s.defaultListLimit, s.maxListLimit)
	return s
}

// Add embeds the description and stores a new profile. Returns the generated ID.
func (s *Service) Add(ctx context.Context, in domprofile.Input) (string, error) {
	vec, err := s.embedder.Embed(ctx, in.Description())
	if err != nil {
		return "", fmt.Errorf("vectorize description: %w", err)
	}

	p := in.Materialize(s.newID(), s.now())
	if err := s.repo.Insert(ctx, &p, vec); err != nil {
		return "", fmt.Errorf("insert profile: %w", err)
	}
	return p.ID(), nil
}

// AddBatch embeds all descriptions in one batched call, then inserts in input order.
// Profiles inserted before a failing insert stay stored.
func (s *Service) AddBatch(ctx context.Context, inputs []domprofile.Input) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one profile is required", domain.ErrValidation)
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		// EmbedBatch drops blank texts, which would break index alignment
		if strings.TrimSpace(in.Description()) == "" {
			return nil, fmt.Errorf("profile %d: %w", i, domain.ErrInvalidInput)
		}
		texts[i] = in.Description()
	}

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize descriptions: %w", err)
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("vectorize descriptions: got %d vectors for %d profiles: %w",
			len(vecs), len(inputs), domain.ErrEmbeddingProviderError)
	}

	now := s.now()
	ids := make([]string, 0, len(inputs))
	for i, in := range inputs {
		p := in.Materialize(s.newID(), now)
		if err := s.repo.Insert(ctx, &p, vecs[i]); err != nil {
			return ids, fmt.Errorf("insert profile %d: %w", i, err)
		}
		ids = append(ids, p.ID())
	}
	return ids, nil
}

// Get returns a profile by ID.
func (s *Service) Get(ctx context.Context, id string) (domprofile.Profile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprofile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Search ranks stored profiles by similarity to the query description, best first.
// excludeID, when set, is never returned.
func (s *Service) Search(ctx context.Context, query string, limit int, excludeID string) ([]match.Result, error) {
	if limit < 1 || limit > s.maxSearchLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, s.maxSearchLimit)
	}
	if n := utf8.RuneCountInString(query); n < domprofile.MinDescriptionLen || n > domprofile.MaxDescriptionLen {
		return nil, fmt.Errorf("%w: query_description must be %d-%d characters",
			domain.ErrValidation, domprofile.MinDescriptionLen, domprofile.MaxDescriptionLen)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	neighbors, err := s.repo.Query(ctx, vec, limit, excludeID)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}

	// Stores already over-fetch and filter; this guards against a backend that does not.
	neighbors = domprofile.TrimNeighbors(neighbors, limit, excludeID)
	return match.FromNeighbors(neighbors), nil
}

// List returns up to limit profiles. Zero limit means the default.
func (s *Service) List(ctx context.Context, limit int) ([]domprofile.Profile, error) {
	if limit == 0 {
		limit = s.defaultListLimit
	}
	if limit < 1 || limit > s.maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, s.maxListLimit)
	}

	profiles, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a profile and its vector.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if !removed {
		return fmt.Errorf("delete profile %q: %w", id, domain.ErrProfileNotFound)
	}
	return nil
}

// Stats returns the profile count and where the collection lives.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count profiles: %w", err)
	}
	return Stats{
		TotalProfiles:   n,
		CollectionName:  s.repo.Name(),
		PersistLocation: s.repo.Location(),
	}, nil
}
