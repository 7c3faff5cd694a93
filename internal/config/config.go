package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTemplate []byte

// Supported database drivers.
const (
	DriverRedis    = "redis"
	DriverValkey   = "valkey"
	DriverQdrant   = "qdrant"
	DriverPostgres = "postgres"
)

// Config holds the profilematch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Limits    LimitsConfig    `yaml:"limits"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys means auth is off.
type AuthConfig struct {
	APIKeys StringList `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// Addr returns host:port for the listener.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Driver           string     `yaml:"driver"` // redis, valkey, qdrant, postgres (default: redis)
	Addrs            StringList `yaml:"addrs"`
	Username         string     `yaml:"username"`
	Password         string     `yaml:"password"`
	DSN              string     `yaml:"dsn"` // postgres only
	Collection       string     `yaml:"collection"`
	ReadinessTimeout int        `yaml:"readiness_timeout_sec"`
	HNSWM            int        `yaml:"hnsw_m"`
	HNSWEFConstruct  int        `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // metrics label only
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // redis/valkey only, 0 disables the cache
}

// LimitsConfig holds request size limits.
type LimitsConfig struct {
	MaxSearchLimit   int `yaml:"max_search_limit"`
	DefaultListLimit int `yaml:"default_list_limit"`
	MaxListLimit     int `yaml:"max_list_limit"`
	MaxBatchSize     int `yaml:"max_batch_size"`
}

// StringList accepts either a YAML sequence or a comma-separated scalar,
// so list values can come from a single environment variable.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		*l = compact(items)
	case yaml.ScalarNode:
		*l = compact(strings.Split(node.Value, ","))
	default:
		return fmt.Errorf("line %d: expected a list or comma-separated string", node.Line)
	}
	return nil
}

func compact(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads configuration for an environment name (local, dev, docker, prod).
// A .env file in the working directory is applied first without overriding set variables.
// Without config/<env>.yaml the embedded default template is used.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	data, err := readConfig(env)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "person_profiles"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.HNSWM <= 0 {
		c.Database.HNSWM = 16
	}
	if c.Database.HNSWEFConstruct <= 0 {
		c.Database.HNSWEFConstruct = 200
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Limits.MaxSearchLimit <= 0 {
		c.Limits.MaxSearchLimit = 50
	}
	if c.Limits.DefaultListLimit <= 0 {
		c.Limits.DefaultListLimit = 100
	}
	if c.Limits.MaxListLimit <= 0 {
		c.Limits.MaxListLimit = 1000
	}
	if c.Limits.MaxBatchSize <= 0 {
		c.Limits.MaxBatchSize = 100
	}
}

// Ceilings fixed by the HTTP contract: search limit>50 and list limit>1000 are 400s.
const (
	searchLimitCeiling = 50
	listLimitCeiling   = 1000
)

var collectionRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey, DriverQdrant:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf(
			"database.driver must be one of redis, valkey, qdrant, postgres, got %q", c.Database.Driver,
		)
	}
	if !collectionRegex.MatchString(c.Database.Collection) {
		return fmt.Errorf("database.collection %q must match %s", c.Database.Collection, collectionRegex)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Embedding.CacheTTLSec < 0 {
		return fmt.Errorf("embedding.cache_ttl_sec must not be negative, got %d", c.Embedding.CacheTTLSec)
	}
	if c.Limits.MaxSearchLimit > searchLimitCeiling {
		return fmt.Errorf("limits.max_search_limit must not exceed %d, got %d",
			searchLimitCeiling, c.Limits.MaxSearchLimit)
	}
	if c.Limits.MaxListLimit > listLimitCeiling {
		return fmt.Errorf("limits.max_list_limit must not exceed %d, got %d",
			listLimitCeiling, c.Limits.MaxListLimit)
	}
	if c.Limits.DefaultListLimit > c.Limits.MaxListLimit {
		return fmt.Errorf("limits.default_list_limit (%d) exceeds limits.max_list_limit (%d)",
			c.Limits.DefaultListLimit, c.Limits.MaxListLimit)
	}
	return nil
}

func readConfig(env string) ([]byte, error) {
	path, ok := findConfigPath(env)
	if !ok {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return data, nil
}

// findConfigPath locates config/<env>.yaml.
func findConfigPath(env string) (string, bool) {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path, true
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path, true
	}

	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
