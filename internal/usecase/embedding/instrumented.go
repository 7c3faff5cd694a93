package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/metrics"
)

// DefaultMaxAPIBatchSize caps how many texts go into one provider request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder sits directly above the provider client. It logs every call,
// charges tokens to the request's usage and splits large batches.
// Request counters and latency live in transport/openai.
type InstrumentedEmbedder struct {
	inner  domain.Embedder
	logger *zap.Logger
	label  string // provider label for the batch size histogram
}

// NewInstrumentedEmbedder wraps inner. provider and model are attached to every log line.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:  inner,
		logger: logger.With(zap.String("provider", provider), zap.String("model", model)),
		label:  provider,
	}
}

// Embed implements domain.Embedder.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	res, err := p.inner.Embed(ctx, text)
	if err != nil {
		p.logger.Error("Embedding request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	domain.UsageFrom(ctx).Record(res.TotalTokens)
	p.logger.Debug("Embedding request completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed implements domain.BatchEmbedder, one provider call per DefaultMaxAPIBatchSize texts.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		chunk := texts[offset:min(offset+DefaultMaxAPIBatchSize, len(texts))]
		metrics.EmbeddingBatchSize.WithLabelValues(p.label).Observe(float64(len(chunk)))

		res, err := domain.EmbedBatch(ctx, p.inner, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	domain.UsageFrom(ctx).Record(out.TotalTokens)
	p.logger.Debug("Batch embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}
