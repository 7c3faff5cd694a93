package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

func TestService_AddThenGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	age := 28
	loc := "Denver"
	in, err := domprofile.NewInput("Alex", "Loves hiking and sci-fi novels", &age, &loc)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}

	id, err := svc.Add(ctx, in)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected UUID id, got %q", id)
	}

	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != "Alex" || got.Description() != "Loves hiking and sci-fi novels" {
		t.Errorf("unexpected profile %q / %q", got.Name(), got.Description())
	}
	if got.Age() == nil || *got.Age() != 28 {
		t.Errorf("expected age 28, got %v", got.Age())
	}
	if got.Location() == nil || *got.Location() != "Denver" {
		t.Errorf("expected location Denver, got %v", got.Location())
	}
	if got.CreatedAt().Location().String() != "UTC" {
		t.Errorf("expected UTC createdAt, got %v", got.CreatedAt())
	}
}

func TestService_Add_EmbedError(t *testing.T) {
	svc, repo, emb := newTestService(t)
	emb.err = fmt.Errorf("provider down: %w", domain.ErrEmbeddingProviderError)

	_, err := svc.Add(context.Background(), mustInput(t, "Alex", "Loves hiking a lot"))
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("nothing should be stored on embed failure")
	}
}

func TestService_Add_StoreError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.insertErr = errors.New("connection refused")

	_, err := svc.Add(context.Background(), mustInput(t, "Alex", "Loves hiking a lot"))
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindInternal {
		t.Errorf("expected internal kind, got %v", domain.KindOf(err))
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestService_AddBatch(t *testing.T) {
	svc, repo, emb := newTestService(t)
	ctx := context.Background()

	inputs := []domprofile.Input{
		mustInput(t, "A", "Enjoys hiking in the mountains"),
		mustInput(t, "B", "Photography and travel addict"),
		mustInput(t, "C", "Cooking and music every weekend"),
	}

	ids, err := svc.AddBatch(ctx, inputs)
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if emb.batchCalls != 1 {
		t.Errorf("expected one batch embed call, got %d", emb.batchCalls)
	}
	for i, want := range []string{"A", "B", "C"} {
		p := repo.entries[ids[i]].profile
		if p.Name() != want {
			t.Errorf("ids[%d] maps to %q, want %q", i, p.Name(), want)
		}
	}
}

func TestService_AddBatch_Validation(t *testing.T) {
	svc, _, emb := newTestService(t)

	_, err := svc.AddBatch(context.Background(), nil)
	if domain.KindOf(err) != domain.KindValidation {
		t.Errorf("empty batch: expected validation error, got %v", err)
	}

	blank := mustInput(t, "Blank", "            ")
	_, err = svc.AddBatch(context.Background(), []domprofile.Input{mustInput(t, "A", "Enjoys hiking a lot"), blank})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("blank description: expected ErrInvalidInput, got %v", err)
	}
	if emb.batchCalls != 0 {
		t.Errorf("embedder must not be called for invalid batches")
	}
}

func TestService_Search_OrderedAndLimited(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []domprofile.Input{
		mustInput(t, "P1", "hiking hiking mountain"),
		mustInput(t, "P2", "hiking and travel"),
		mustInput(t, "P3", "photography travel travel"),
		mustInput(t, "P4", "cooking and music"),
		mustInput(t, "P5", "reading science fiction"),
	} {
		if _, err := svc.Add(ctx, in); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	results, err := svc.Search(ctx, "I love hiking in the mountain air", 3, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := range results {
		s := results[i].Score()
		if s < 0 || s > 1 {
			t.Errorf("score %f out of [0,1]", s)
		}
		if i > 0 && s > results[i-1].Score() {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, s, results[i-1].Score())
		}
	}
	top := results[0].Profile()
	if top.Name() != "P1" {
		t.Errorf("expected P1 first, got %s", top.Name())
	}
}

func TestService_Search_ExcludesID(t *testing.T) {
	for _, leak := range []bool{false, true} {
		t.Run(fmt.Sprintf("store_filters=%v", !leak), func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			repo.leakExcluded = leak
			ctx := context.Background()

			selfID, err := svc.Add(ctx, mustInput(t, "Self", "hiking mountain hiking"))
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			for _, d := range []string{"hiking lover here", "mountain hiking trips", "travel and photography"} {
				if _, err := svc.Add(ctx, mustInput(t, "Other", d)); err != nil {
					t.Fatalf("Add: %v", err)
				}
			}

			results, err := svc.Search(ctx, "hiking mountain hiking", 2, selfID)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("expected 2 results, got %d", len(results))
			}
			for i := range results {
				p := results[i].Profile()
				if p.ID() == selfID {
					t.Errorf("excluded profile returned")
				}
			}
		})
	}
}

func TestService_Search_LimitValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, limit := range []int{0, -1, 51} {
		_, err := svc.Search(context.Background(), "hiking in the mountains", limit, "")
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("limit=%d: expected validation error, got %v", limit, err)
		}
	}
}

func TestService_Search_QueryValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Search(context.Background(), "short", 5, "")
	if domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected validation error for short query, got %v", err)
	}
}

func TestService_Search_StoreError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.queryErr = errors.New("search index missing")

	_, err := svc.Search(context.Background(), "hiking in the mountains", 5, "")
	if domain.KindOf(err) != domain.KindInternal {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	for i := range 5 {
		if _, err := svc.Add(ctx, mustInput(t, fmt.Sprintf("P%d", i), "a perfectly fine description")); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := svc.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(got))
	}

	got, err = svc.List(ctx, 0)
	if err != nil {
		t.Fatalf("List default: %v", err)
	}
	if len(got) != len(repo.entries) {
		t.Errorf("default limit should return all %d, got %d", len(repo.entries), len(got))
	}

	for _, limit := range []int{-1, 1001} {
		if _, err := svc.List(ctx, limit); domain.KindOf(err) != domain.KindValidation {
			t.Errorf("limit=%d: expected validation error, got %v", limit, err)
		}
	}
}

func TestService_WithLimits(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.WithLimits(3, 0, 500)

	if _, err := svc.Search(context.Background(), "hiking in the mountains", 4, ""); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected custom search limit to apply, got %v", err)
	}
	if _, err := svc.List(context.Background(), 501); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("expected custom list limit to apply, got %v", err)
	}
	if svc.defaultListLimit != DefaultListLimit {
		t.Errorf("zero should keep the default list limit, got %d", svc.defaultListLimit)
	}
}

func TestService_WithLimitsCannotExceedCeilings(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.WithLimits(500, 0, 5000)

	if svc.maxSearchLimit != MaxSearchLimit || svc.maxListLimit != MaxListLimit {
		t.Fatalf("limits = %d/%d, want %d/%d",
			svc.maxSearchLimit, svc.maxListLimit, MaxSearchLimit, MaxListLimit)
	}
	if _, err := svc.Search(context.Background(), "hiking in the mountains", MaxSearchLimit+1, ""); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("limit=%d: expected validation error, got %v", MaxSearchLimit+1, err)
	}
	if _, err := svc.List(context.Background(), MaxListLimit+1); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("limit=%d: expected validation error, got %v", MaxListLimit+1, err)
	}
}

func TestService_WithLimitsClampsDefaultList(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.WithLimits(0, 0, 20)

	if svc.defaultListLimit != 20 {
		t.Errorf("default list limit = %d, want clamped to 20", svc.defaultListLimit)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, mustInput(t, "Alex", "Loves hiking a lot"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, id); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, id); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("second delete: expected ErrProfileNotFound, got %v", err)
	}
}

func TestService_Stats(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, mustInput(t, "Alex", "Loves hiking a lot")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalProfiles != 1 || st.CollectionName != "person_profiles" || st.PersistLocation != "memory" {
		t.Errorf("unexpected stats %+v", st)
	}

	repo.countErr = errors.New("boom")
	if _, err := svc.Stats(ctx); err == nil {
		t.Error("expected error from failing count")
	}
}

func TestService_AlexSarahMatching(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	alexAge, sarahAge := 28, 25
	alexLoc, sarahLoc := "Denver", "San Francisco"
	alexIn, _ := domprofile.NewInput("Alex",
		"I love hiking in the mountains and reading sci-fi novels on weekends", &alexAge, &alexLoc)
	sarahIn, _ := domprofile.NewInput("Sarah",
		"Passionate about photography and travel, always planning the next trip", &sarahAge, &sarahLoc)

	ids, err := svc.AddBatch(ctx, []domprofile.Input{alexIn, sarahIn})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}

	top, err := svc.Search(ctx, "I love hiking and mountains", 1, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected 1 result, got %d", len(top))
	}
	p := top[0].Profile()
	if p.ID() != ids[0] || p.Name() != "Alex" {
		t.Fatalf("expected Alex, got %s", p.Name())
	}

	both, err := svc.Search(ctx, "I love hiking and mountains", 2, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected 2 results, got %d", len(both))
	}
	if both[0].Score() <= both[1].Score() {
		t.Errorf("Alex score %f should beat Sarah score %f", both[0].Score(), both[1].Score())
	}
}
