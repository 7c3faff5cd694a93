package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/config"
	dbRedis "github.com/kailas-cloud/profilematch/internal/db/redis"
	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/metrics"
	"github.com/kailas-cloud/profilematch/internal/repository/embcache"
	"github.com/kailas-cloud/profilematch/internal/repository/postgres"
	profilerepo "github.com/kailas-cloud/profilematch/internal/repository/profile"
	"github.com/kailas-cloud/profilematch/internal/repository/qdrant"
	openaiEmb "github.com/kailas-cloud/profilematch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/profilematch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/profilematch/internal/usecase/health"
	profileuc "github.com/kailas-cloud/profilematch/internal/usecase/profile"
)

// app holds the wired services shared by serve and seed.
type app struct {
	profiles *profileuc.Service
	health   *healthuc.Service
	closers  []func()
}

// Close releases backend connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// backend is what a storage driver contributes to the app.
type backend struct {
	repo   profileuc.Repository
	pinger healthuc.DBPinger
	// cache is the KV store for embedding cache, nil when the driver has none.
	cache *dbRedis.Store
	close func()
}

// buildApp is the composition root.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterStoreMetrics()

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	model := base.ResolveModel(ctx)

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{closers: []func(){b.close}}

	// Decorator chain: OpenAI -> Cached -> Instrumented -> Provider
	var embedder domain.Embedder = base
	if b.cache != nil && cfg.Embedding.CacheTTLSec > 0 {
		embedder = embcache.New(base, b.cache, model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, model, logger)
	provider := embeddinguc.NewProvider(embedder, model)

	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", b.cache != nil && cfg.Embedding.CacheTTLSec > 0),
	)

	repo := profileuc.NewInstrumentedRepository(b.repo, cfg.Database.Driver)
	a.profiles = profileuc.New(repo, provider).
		WithLimits(cfg.Limits.MaxSearchLimit, cfg.Limits.DefaultListLimit, cfg.Limits.MaxListLimit)
	a.health = healthuc.New(b.pinger, a.profiles, base)

	return a, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	dbc := cfg.Database
	switch dbc.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    dbc.Addrs,
			Username: dbc.Username,
			Password: dbc.Password,
			Valkey:   dbc.Driver == config.DriverValkey,
		})
		if err != nil {
			return backend{}, fmt.Errorf("create %s store: %w", dbc.Driver, err)
		}
		if err := store.WaitForReady(ctx, time.Duration(dbc.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return backend{}, fmt.Errorf("database not ready: %w", err)
		}
		repo := profilerepo.New(store, profilerepo.Config{
			Collection:      dbc.Collection,
			Dimensions:      cfg.Embedding.Dimensions,
			Location:        dbc.Driver + "://" + store.Addr(),
			HNSW:            profilerepo.HNSWConfig{M: dbc.HNSWM, EFConstruct: dbc.HNSWEFConstruct},
			NativeExclusion: dbc.Driver == config.DriverRedis,
		})
		if err := repo.Open(ctx); err != nil {
			store.Close()
			return backend{}, fmt.Errorf("open collection: %w", err)
		}
		return backend{repo: repo, pinger: store, cache: store, close: store.Close}, nil

	case config.DriverQdrant:
		repo, err := qdrant.Dial(qdrant.Config{
			Addr:       dbc.Addrs[0],
			Collection: dbc.Collection,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return backend{}, err
		}
		if err := repo.Open(ctx); err != nil {
			repo.Close()
			return backend{}, fmt.Errorf("open collection: %w", err)
		}
		return backend{repo: repo, pinger: repo, close: repo.Close}, nil

	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, postgres.Config{
			DSN:        dbc.DSN,
			Collection: dbc.Collection,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return backend{}, err
		}
		return backend{repo: repo, pinger: repo, close: repo.Close}, nil

	default:
		return backend{}, fmt.Errorf("unknown database driver %q", dbc.Driver)
	}
}
