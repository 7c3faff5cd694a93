package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/vector"
)

// Provider is the text-to-vector entry point used by the matching service.
// It trims input, rejects empty text and routes batches through BatchEmbed when the chain supports it.
type Provider struct {
	embedder domain.Embedder
	model    string
}

// NewProvider wraps an embedder chain (transport, cache, instrumentation).
func NewProvider(embedder domain.Embedder, model string) *Provider {
	return &Provider{embedder: embedder, model: model}
}

// Model returns the resolved model name.
func (p *Provider) Model() string {
	return p.model
}

// Embed vectorizes a single text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	res, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("embed: empty vector: %w", domain.ErrEmbeddingProviderError)
	}
	return res.Embedding, nil
}

// EmbedBatch vectorizes texts, dropping entries that are empty after trimming.
// The result is aligned with the surviving entries, not with the input.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, domain.ErrInvalidInput
	}

	res, err := domain.EmbedBatch(ctx, p.embedder, cleaned)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	return res.Embeddings, nil
}

// CosineSimilarity returns the similarity of two vectors in [0,1].
func (p *Provider) CosineSimilarity(a, b []float32) float64 {
	return vector.CosineSimilarity(a, b)
}
