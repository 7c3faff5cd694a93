package profilematch

import (
	"context"
	"errors"
	"testing"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestClient_AddGet(t *testing.T) {
	c := testClient(newMemRepo(), &hobbyEmbedder{})
	ctx := context.Background()

	id, err := c.Add(ctx, ProfileInput{
		Name:        "Alex",
		Description: "I love hiking and sci-fi books",
		Age:         intPtr(28),
		Location:    strPtr("Denver"),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	p, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.ID != id || p.Name != "Alex" || *p.Age != 28 || *p.Location != "Denver" {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt must be set")
	}
}

func TestClient_Add_Validation(t *testing.T) {
	emb := &hobbyEmbedder{}
	c := testClient(newMemRepo(), emb)

	_, err := c.Add(context.Background(), ProfileInput{Name: "Alex", Description: "short"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if emb.calls != 0 {
		t.Error("invalid input must not be embedded")
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	c := testClient(newMemRepo(), &hobbyEmbedder{})

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestClient_AddBatch(t *testing.T) {
	emb := &batchHobbyEmbedder{}
	repo := newMemRepo()
	c := testClient(repo, emb)

	ids, err := c.AddBatch(context.Background(), []ProfileInput{
		{Name: "A", Description: "hiking every weekend"},
		{Name: "B", Description: "photography and travel"},
		{Name: "C", Description: "cooking for friends"},
	})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if emb.batchCalls != 1 {
		t.Errorf("expected one batch call, got %d", emb.batchCalls)
	}
	if repo.order[2] != ids[2] {
		t.Error("ids not in input order")
	}
}

func TestClient_AddBatch_InvalidItem(t *testing.T) {
	repo := newMemRepo()
	c := testClient(repo, &batchHobbyEmbedder{})

	_, err := c.AddBatch(context.Background(), []ProfileInput{
		{Name: "A", Description: "hiking every weekend"},
		{Name: "", Description: "photography and travel"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.order) != 0 {
		t.Error("nothing should be stored when an item is invalid")
	}
}

func TestClient_Search(t *testing.T) {
	c := testClient(newMemRepo(), &hobbyEmbedder{})
	ctx := context.Background()

	alex, _ := c.Add(ctx, ProfileInput{Name: "Alex", Description: "Hiking in the mountains and sci-fi"})
	sarah, _ := c.Add(ctx, ProfileInput{Name: "Sarah", Description: "Photography and travel around the world"})
	_, _ = c.Add(ctx, ProfileInput{Name: "Chef", Description: "Cooking for friends on weekends"})

	matches, err := c.Search(ctx, "I love travel and photo walks", 2, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != sarah {
		t.Errorf("expected Sarah first, got %s", matches[0].Name)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not ordered by score")
	}

	// Alex looking for matches never sees himself.
	matches, err = c.Search(ctx, "Hiking in the mountains and sci-fi", 0, alex)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected the 2 other profiles, got %d", len(matches))
	}
	for _, m := range matches {
		if m.ID == alex {
			t.Fatal("excluded profile returned")
		}
		if m.Score < 0 || m.Score > 1 {
			t.Errorf("score %f out of range", m.Score)
		}
	}
}

func TestClient_Search_Validation(t *testing.T) {
	c := testClient(newMemRepo(), &hobbyEmbedder{})

	if _, err := c.Search(context.Background(), "short", 5, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("short query: expected ErrValidation, got %v", err)
	}
	if _, err := c.Search(context.Background(), "long enough query", 51, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("limit 51: expected ErrValidation, got %v", err)
	}
}

func TestClient_ListDeleteStats(t *testing.T) {
	c := testClient(newMemRepo(), &hobbyEmbedder{})
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		id, err := c.Add(ctx, ProfileInput{Name: name, Description: "a perfectly fine description"})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		ids = append(ids, id)
	}

	ps, err := c.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ps) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(ps))
	}

	if err := c.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete(ctx, ids[0]); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("second delete: expected ErrProfileNotFound, got %v", err)
	}

	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalProfiles != 2 || st.Collection != "person_profiles" || st.Location != "memory://" {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestClient_Health(t *testing.T) {
	repo := newMemRepo()
	c := testClient(repo, &hobbyEmbedder{})

	h := c.Health(context.Background())
	if h.Status != "healthy" || h.Database != "connected" {
		t.Errorf("unexpected health %+v", h)
	}

	repo.pingErr = errors.New("connection refused")
	h = c.Health(context.Background())
	if h.Status != "unhealthy" || h.Database != "disconnected" || h.Error == "" {
		t.Errorf("unexpected health %+v", h)
	}
}
