package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/metrics"
)

// DefaultModel is used when the configured model cannot be resolved.
const DefaultModel = "all-MiniLM-L6-v2"

// Embedder is an embedding provider using the OpenAI-compatible API (OpenAI, Ollama, TEI).
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Model returns the model name requests are sent with.
func (e *Embedder) Model() string {
	return string(e.model)
}

// ResolveModel checks the configured model against GET /models/{id}.
// If the provider does not know it, the embedder switches to DefaultModel and keeps going.
func (e *Embedder) ResolveModel(ctx context.Context) string {
	name := string(e.model)
	if name == "" {
		e.model = DefaultModel
		return DefaultModel
	}
	if _, err := e.client.GetModel(ctx, name); err != nil {
		if e.logger != nil {
			e.logger.Warn("embedding model not available, falling back",
				zap.String("model", name),
				zap.String("fallback", DefaultModel),
				zap.Error(err),
			)
		}
		e.model = DefaultModel
		return DefaultModel
	}
	return name
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder with one request for all texts.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.create(ctx, texts)
}

// create sends one /embeddings request and records transport metrics.
// Vectors come back in input order.
func (e *Embedder) create(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
		Dimensions:     max(e.dimensions, 0),
	}
	model := string(e.model)
	fail := func(reason string, err error) (domain.BatchEmbeddingResult, error) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, model, reason).Inc()
		return domain.BatchEmbeddingResult{}, err
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return fail("api_error", parseAPIError(err))
	}
	switch {
	case len(resp.Data) == 0:
		return fail("empty_response", fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError))
	case len(resp.Data) != len(texts):
		return fail("count_mismatch", fmt.Errorf("got %d vectors for %d texts: %w",
			len(resp.Data), len(texts), domain.ErrEmbeddingProviderError))
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(time.Since(start).Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	// Провайдеры не обязаны сохранять порядок
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := domain.BatchEmbeddingResult{
		Embeddings:   make([][]float32, len(resp.Data)),
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	for i := range resp.Data {
		out.Embeddings[i] = resp.Data[i].Embedding
	}
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError turns a go-openai error into a message carrying the HTTP status and the
// provider's own explanation. Every result wraps domain.ErrEmbeddingProviderError.
func parseAPIError(err error) error {
	var (
		reqErr *openai.RequestError
		apiErr *openai.APIError
	)
	switch {
	case errors.As(err, &reqErr):
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, domain.ErrEmbeddingProviderError)
	case errors.As(err, &apiErr):
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEmbeddingProviderError)
	default:
		return fmt.Errorf("embedding request failed: %w", domain.ErrEmbeddingProviderError)
	}
}

// extractDetail reads {"detail": "..."} bodies (TEI, Nebius).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	return parsed.Detail
}
