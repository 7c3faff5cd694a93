package profile

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	"github.com/kailas-cloud/profilematch/internal/domain/vector"
)

// --- Mocks ---

// memRepo is an in-memory Repository ranking by cosine distance.
type memRepo struct {
	order   []string
	entries map[string]memEntry

	// leakExcluded makes Query ignore excludeID, like a store without filtering.
	leakExcluded bool

	insertErr error
	queryErr  error
	countErr  error
	lastK     int
}

type memEntry struct {
	profile domprofile.Profile
	vec     []float32
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[string]memEntry)}
}

func (m *memRepo) Insert(_ context.Context, p *domprofile.Profile, vec []float32) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.entries[p.ID()]; !ok {
		m.order = append(m.order, p.ID())
	}
	m.entries[p.ID()] = memEntry{profile: *p, vec: vec}
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (domprofile.Profile, error) {
	e, ok := m.entries[id]
	if !ok {
		return domprofile.Profile{}, domain.ErrProfileNotFound
	}
	return e.profile, nil
}

func (m *memRepo) Query(_ context.Context, vec []float32, k int, excludeID string) ([]domprofile.Neighbor, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.lastK = k

	all := make([]domprofile.Neighbor, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		all = append(all, domprofile.Neighbor{
			Profile:  e.profile,
			Distance: 1 - vector.CosineSimilarity(vec, e.vec),
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Distance < all[j].Distance })

	if m.leakExcluded {
		return all[:min(len(all), domprofile.FetchSize(k, excludeID))], nil
	}
	return domprofile.TrimNeighbors(all, k, excludeID), nil
}

func (m *memRepo) List(_ context.Context, limit int) ([]domprofile.Profile, error) {
	out := make([]domprofile.Profile, 0, limit)
	for _, id := range m.order {
		if len(out) == limit {
			break
		}
		out = append(out, m.entries[id].profile)
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.entries[id]; !ok {
		return false, nil
	}
	delete(m.entries, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memRepo) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.entries), nil
}

func (m *memRepo) Name() string     { return "person_profiles" }
func (m *memRepo) Location() string { return "memory" }

// keywordEmbedder is a deterministic bag-of-keywords embedder.
type keywordEmbedder struct {
	err        error
	batchCalls int
}

var vocabulary = []string{
	"hiking", "mountain", "sci-fi", "science fiction", "photography",
	"travel", "cooking", "music", "reading", "running",
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}
	return keywordVector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func keywordVector(text string) []float32 {
	text = strings.ToLower(text)
	v := make([]float32, len(vocabulary)+1)
	for i, w := range vocabulary {
		v[i] = float32(strings.Count(text, w))
	}
	// общий компонент, чтобы не было нулевых векторов
	v[len(vocabulary)] = 0.1
	return v
}

func newTestService(t *testing.T) (*Service, *memRepo, *keywordEmbedder) {
	t.Helper()
	repo := newMemRepo()
	emb := &keywordEmbedder{}
	svc := New(repo, emb)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, emb
}

func mustInput(t *testing.T, name, description string) domprofile.Input {
	t.Helper()
	in, err := domprofile.NewInput(name, description, nil, nil)
	if err != nil {
		t.Fatalf("NewInput(%q): %v", name, err)
	}
	return in
}
