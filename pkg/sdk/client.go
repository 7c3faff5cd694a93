package profilematch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/profilematch/internal/db/redis"
	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/match"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	"github.com/kailas-cloud/profilematch/internal/repository/postgres"
	profilerepo "github.com/kailas-cloud/profilematch/internal/repository/profile"
	"github.com/kailas-cloud/profilematch/internal/repository/qdrant"
	openaiEmb "github.com/kailas-cloud/profilematch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/profilematch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/profilematch/internal/usecase/health"
	profileuc "github.com/kailas-cloud/profilematch/internal/usecase/profile"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCollection       = "person_profiles"
	defaultDimensions       = 384
	customModel             = "custom"
)

// Внутренний интерфейс для подмены в тестах.
type profileService interface {
	Add(ctx context.Context, in domprofile.Input) (string, error)
	AddBatch(ctx context.Context, inputs []domprofile.Input) ([]string, error)
	Get(ctx context.Context, id string) (domprofile.Profile, error)
	Search(ctx context.Context, query string, limit int, excludeID string) ([]match.Result, error)
	List(ctx context.Context, limit int) ([]domprofile.Profile, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (profileuc.Stats, error)
}

// Client is the profilematch SDK entry point.
type Client struct {
	profiles profileService
	health   healthUseCase
	closeFn  func()
	obs      *observer
}

// storeHandle is what a driver contributes to the client.
type storeHandle struct {
	repo   profileuc.Repository
	pinger healthuc.DBPinger
	close  func()
}

// New creates a Client, connects to the store and creates the collection if missing.
// The provided context is used for the readiness check and collection setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		collection:       defaultCollection,
		vectorDimensions: defaultDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New(
			"profilematch: store required (use WithRedis, WithValkey, WithQdrant or WithPostgres)",
		)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	emb, model := buildEmbedder(ctx, cfg)

	h, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return wireClient(h, emb, model, obs), nil
}

func buildEmbedder(ctx context.Context, cfg *clientConfig) (domain.Embedder, string) {
	switch {
	case cfg.embedder != nil:
		return adaptEmbedder(cfg.embedder), customModel
	case cfg.openai != nil:
		e := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openai.apiKey,
			BaseURL:    cfg.openai.baseURL,
			Model:      cfg.openai.model,
			Dimensions: cfg.vectorDimensions,
			Provider:   "openai",
			Logger:     zap.NewNop(),
		})
		return e, e.ResolveModel(ctx)
	default:
		return noopEmbedder{}, customModel
	}
}

func openStore(ctx context.Context, cfg *clientConfig) (storeHandle, error) {
	switch cfg.driver {
	case driverRedis, driverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			Valkey:   cfg.driver == driverValkey,
		})
		if err != nil {
			return storeHandle{}, fmt.Errorf("profilematch: create %s store: %w", cfg.driver, err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return storeHandle{}, fmt.Errorf("profilematch: database not ready: %w", err)
		}
		repo := profilerepo.New(s, profilerepo.Config{
			Collection:      cfg.collection,
			Dimensions:      cfg.vectorDimensions,
			Location:        cfg.driver + "://" + s.Addr(),
			HNSW:            profilerepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct},
			NativeExclusion: cfg.driver == driverRedis,
		})
		if err := repo.Open(ctx); err != nil {
			s.Close()
			return storeHandle{}, fmt.Errorf("profilematch: open collection: %w", err)
		}
		return storeHandle{repo: repo, pinger: s, close: s.Close}, nil

	case driverQdrant:
		repo, err := qdrant.Dial(qdrant.Config{
			Addr:       cfg.addrs[0],
			Collection: cfg.collection,
			Dimensions: cfg.vectorDimensions,
		})
		if err != nil {
			return storeHandle{}, fmt.Errorf("profilematch: %w", err)
		}
		if err := repo.Open(ctx); err != nil {
			repo.Close()
			return storeHandle{}, fmt.Errorf("profilematch: open collection: %w", err)
		}
		return storeHandle{repo: repo, pinger: repo, close: repo.Close}, nil

	case driverPostgres:
		repo, err := postgres.Open(ctx, postgres.Config{
			DSN:        cfg.dsn,
			Collection: cfg.collection,
			Dimensions: cfg.vectorDimensions,
		})
		if err != nil {
			return storeHandle{}, fmt.Errorf("profilematch: %w", err)
		}
		return storeHandle{repo: repo, pinger: repo, close: repo.Close}, nil

	default:
		return storeHandle{}, fmt.Errorf("profilematch: unknown driver %q", cfg.driver)
	}
}

func wireClient(h storeHandle, emb domain.Embedder, model string, obs *observer) *Client {
	profiles := profileuc.New(h.repo, embeddinguc.NewProvider(emb, model))

	// nil interface, not a typed nil, when the embedder cannot report health
	var checker healthuc.EmbeddingChecker
	if hc, ok := emb.(domain.HealthChecker); ok {
		checker = hc
	}

	return &Client{
		profiles: profiles,
		health:   healthuc.New(h.pinger, profiles, checker),
		closeFn:  h.close,
		obs:      obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Add validates, embeds and stores a profile. Returns the new profile ID.
func (c *Client) Add(ctx context.Context, in ProfileInput) (id string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.add", start, err) }()

	dom, err := in.toDomain()
	if err != nil {
		return "", err
	}
	if id, err = c.profiles.Add(ctx, dom); err != nil {
		return "", fmt.Errorf("add profile: %w", err)
	}
	return id, nil
}

// AddBatch adds profiles with one embedding call. IDs are returned in input order.
// Nothing is stored if any input is invalid.
func (c *Client) AddBatch(ctx context.Context, inputs []ProfileInput) (ids []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.add_batch", start, err) }()

	doms := make([]domprofile.Input, len(inputs))
	for i, in := range inputs {
		if doms[i], err = in.toDomain(); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
	}
	if ids, err = c.profiles.AddBatch(ctx, doms); err != nil {
		return nil, fmt.Errorf("add profiles: %w", err)
	}
	return ids, nil
}

// Get returns a profile by ID. Returns ErrProfileNotFound if absent.
func (c *Client) Get(ctx context.Context, id string) (p Profile, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.get", start, err) }()

	dom, err := c.profiles.Get(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profileFromDomain(&dom), nil
}

// Search returns up to limit profiles most similar to query, best first.
// limit <= 0 means 5. A non-empty excludeID is never returned.
func (c *Client) Search(ctx context.Context, query string, limit int, excludeID string) (ms []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.search", start, err) }()

	if limit <= 0 {
		limit = profileuc.DefaultSearchLimit
	}
	results, err := c.profiles.Search(ctx, query, limit, excludeID)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	ms = make([]Match, len(results))
	for i := range results {
		ms[i] = matchFromDomain(&results[i])
	}
	return ms, nil
}

// List returns up to limit stored profiles. limit <= 0 means 100.
func (c *Client) List(ctx context.Context, limit int) (ps []Profile, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.list", start, err) }()

	if limit < 0 {
		limit = 0
	}
	doms, err := c.profiles.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	ps = make([]Profile, len(doms))
	for i := range doms {
		ps[i] = profileFromDomain(&doms[i])
	}
	return ps, nil
}

// Delete removes a profile. Returns ErrProfileNotFound if absent.
func (c *Client) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.delete", start, err) }()

	if err = c.profiles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Stats reports the profile count and where the collection lives.
func (c *Client) Stats(ctx context.Context) (st Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.stats", start, err) }()

	dst, err := c.profiles.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return statsFromDomain(dst), nil
}
