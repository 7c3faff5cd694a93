package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/db"
	"github.com/kailas-cloud/profilematch/internal/domain"
)

// mockEmbedder answers every text with result.Embedding unless batchResult is set.
type mockEmbedder struct {
	result      domain.EmbeddingResult
	err         error
	batchResult domain.BatchEmbeddingResult
	batchErr    error
	batchCalls  int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	switch {
	case m.batchErr != nil:
		return domain.BatchEmbeddingResult{}, m.batchErr
	case m.batchResult.Embeddings != nil:
		return m.batchResult, nil
	}
	out := domain.BatchEmbeddingResult{
		Embeddings:   make([][]float32, 0, len(texts)),
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}
	for range texts {
		out.Embeddings = append(out.Embeddings, m.result.Embedding)
	}
	return out, nil
}

// mockKVStore is a miss-everything cache whose hooks tests override.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn == nil {
		return nil, db.ErrKeyNotFound
	}
	return m.getFn(ctx, key)
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn == nil {
		return nil
	}
	return m.setFn(ctx, key, value, ttl)
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockKVStore) {
	t.Helper()
	kv := &mockKVStore{}
	return New(inner, kv, "all-MiniLM-L6-v2", time.Hour, nil, zap.NewNop()), kv
}
