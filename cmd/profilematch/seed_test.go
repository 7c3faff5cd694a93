package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

func TestParseSeed_YAML(t *testing.T) {
	src := `
- name: Alex
  description: I love hiking and sci-fi books
  age: 28
  location: Denver
- name: Sarah
  description: Photography and travel are my passions
`
	inputs, err := parseSeed(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}
	if inputs[1].Description() != "Photography and travel are my passions" {
		t.Errorf("description = %q", inputs[1].Description())
	}
}

func TestParseSeed_JSON(t *testing.T) {
	src := `[{"name": "Alex", "description": "I love hiking and sci-fi books", "age": 28}]`
	inputs, err := parseSeed(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected 1 input, got %d", len(inputs))
	}
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		validation bool
	}{
		{"empty file", "", false},
		{"empty list", "[]", false},
		{"not a list", "name: Alex", false},
		{"invalid profile", "- name: Alex\n  description: short", true},
		{"age out of range", "- name: Alex\n  description: long enough text\n  age: 12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSeed(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, domain.ErrValidation); got != tt.validation {
				t.Errorf("errors.Is(ErrValidation) = %v, want %v (%v)", got, tt.validation, err)
			}
		})
	}
}

type fakeAdder struct {
	batches []int
	failAt  int
}

func (f *fakeAdder) AddBatch(_ context.Context, inputs []domprofile.Input) ([]string, error) {
	if f.failAt > 0 && len(f.batches)+1 == f.failAt {
		return nil, errors.New("store down")
	}
	f.batches = append(f.batches, len(inputs))
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.Name()
	}
	return ids, nil
}

func seedInputs(t *testing.T, n int) []domprofile.Input {
	t.Helper()
	out := make([]domprofile.Input, n)
	for i := range out {
		in, err := domprofile.NewInput(string(rune('a'+i)), "a perfectly fine description", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = in
	}
	return out
}

func TestSeedProfiles_Chunks(t *testing.T) {
	svc := &fakeAdder{}
	ids, err := seedProfiles(context.Background(), svc, seedInputs(t, 5), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.batches) != 3 || svc.batches[0] != 2 || svc.batches[2] != 1 {
		t.Errorf("batches = %v, want [2 2 1]", svc.batches)
	}
	if strings.Join(ids, "") != "abcde" {
		t.Errorf("ids out of order: %v", ids)
	}
}

func TestSeedProfiles_StopsOnError(t *testing.T) {
	svc := &fakeAdder{failAt: 2}
	ids, err := seedProfiles(context.Background(), svc, seedInputs(t, 5), 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(ids) != 2 {
		t.Errorf("expected the first batch to be reported, got %v", ids)
	}
}
