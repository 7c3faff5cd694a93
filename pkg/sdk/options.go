package profilematch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// Store drivers.
const (
	driverRedis    = "redis"
	driverValkey   = "valkey"
	driverQdrant   = "qdrant"
	driverPostgres = "postgres"
)

type clientConfig struct {
	driver   string
	addrs    []string
	password string
	dsn      string

	embedder Embedder
	openai   *openAIConfig

	collection       string
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type openAIConfig struct {
	baseURL string
	apiKey  string
	model   string
}

// WithRedis stores profiles in Redis with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey stores profiles in Valkey with valkey-search.
// Exclusion is applied after the KNN query.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithQdrant stores profiles in Qdrant. addr is the gRPC endpoint (host:6334).
func WithQdrant(addr string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverQdrant
		c.addrs = []string{addr}
	})
}

// WithPostgres stores profiles in PostgreSQL with the pgvector extension.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.dsn = dsn
	})
}

// WithEmbedder sets a custom text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI uses an OpenAI-compatible /v1/embeddings endpoint.
// An unknown model falls back to all-MiniLM-L6-v2.
// Ignored when WithEmbedder is also given.
func WithOpenAI(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &openAIConfig{baseURL: baseURL, apiKey: apiKey, model: model}
	})
}

// WithCollection sets the collection (index, table) name. Default: person_profiles.
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithVectorDimensions sets the embedding dimension. Default: 384.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (Redis/Valkey only).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
