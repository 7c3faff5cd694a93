package profilematch

import (
	"context"
	"sort"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	"github.com/kailas-cloud/profilematch/internal/domain/vector"
)

// --- in-memory store ---

type memRepo struct {
	order    []string
	profiles map[string]domprofile.Profile
	vectors  map[string][]float32
	pingErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: map[string]domprofile.Profile{}, vectors: map[string][]float32{}}
}

func (m *memRepo) Insert(_ context.Context, p *domprofile.Profile, vec []float32) error {
	m.order = append(m.order, p.ID())
	m.profiles[p.ID()] = *p
	m.vectors[p.ID()] = vec
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (domprofile.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return domprofile.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (m *memRepo) Query(_ context.Context, vec []float32, k int, excludeID string) ([]domprofile.Neighbor, error) {
	var out []domprofile.Neighbor
	for _, id := range m.order {
		p, ok := m.profiles[id]
		if !ok {
			continue
		}
		out = append(out, domprofile.Neighbor{Profile: p, Distance: 1 - vector.CosineSimilarity(vec, m.vectors[id])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return domprofile.TrimNeighbors(out, k, excludeID), nil
}

func (m *memRepo) List(_ context.Context, limit int) ([]domprofile.Profile, error) {
	var out []domprofile.Profile
	for _, id := range m.order {
		if p, ok := m.profiles[id]; ok && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.profiles[id]; !ok {
		return false, nil
	}
	delete(m.profiles, id)
	return true, nil
}

func (m *memRepo) Count(_ context.Context) (int, error) { return len(m.profiles), nil }
func (m *memRepo) Name() string                         { return "person_profiles" }
func (m *memRepo) Location() string                     { return "memory://" }
func (m *memRepo) Ping(_ context.Context) error         { return m.pingErr }

// --- embedders ---

// hobbyEmbedder maps a few hobby words onto fixed axes.
type hobbyEmbedder struct {
	calls int
}

func (e *hobbyEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	e.calls++
	t := strings.ToLower(text)
	return EmbeddingResult{
		Embedding: []float32{
			float32(strings.Count(t, "hiking") + strings.Count(t, "mountain")),
			float32(strings.Count(t, "photo") + strings.Count(t, "travel")),
			float32(strings.Count(t, "cook")),
			0.1,
		},
		TotalTokens: len(strings.Fields(t)),
	}, nil
}

// batchHobbyEmbedder counts batch calls separately.
type batchHobbyEmbedder struct {
	hobbyEmbedder
	batchCalls int
}

func (e *batchHobbyEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	e.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		r, _ := e.hobbyEmbedder.Embed(ctx, text)
		out.Embeddings[i] = r.Embedding
		out.TotalTokens += r.TotalTokens
	}
	e.calls -= len(texts)
	return out, nil
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- helpers ---

func testClient(repo *memRepo, e Embedder) *Client {
	return wireClient(storeHandle{repo: repo, pinger: repo}, adaptEmbedder(e), customModel, nil)
}
