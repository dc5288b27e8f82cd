package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendQdrant   = "qdrant"
)

var (
	knownProviders  = map[string]bool{"openai": true, "ollama": true, "gemini": true, "dummy": true}
	knownStrategies = map[string]bool{"sentence_splitter": true, "word_overlap": true}
	knownOperators  = map[string]bool{
		"cosine": true, "l1": true, "manhattan": true, "l2": true, "euclidean": true,
		"inner_product": true, "ip": true, "dot": true,
	}
)

type Config struct {
	DatabaseURL string
	SslCertPath string

	StoreBackend   string
	QdrantHost     string
	QdrantPort     int
	QdrantAPIKey   string
	QdrantPageSize int

	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string
	EmbedDim      int

	ChunkingStrategy    string
	ChunkSize           int
	Concurrency         int
	EmbedConcurrency    int
	FetchTimeoutSeconds int

	DistanceThreshold float64
	DistanceOperator  string
	SearchPageTags    bool

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string

	Port        string
	CorsOrigins []string
	LogDebug    bool

	// Warnings collects malformed values that fell back to defaults. They
	// are logged once the logger exists.
	Warnings []string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.SslCertPath = getEnv("SSL_CERT_PATH", "")

	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres))
	cfg.QdrantHost = getEnv("QDRANT_HOST", "localhost")
	cfg.QdrantPort = cfg.getEnvInt("QDRANT_PORT", 6334)
	cfg.QdrantAPIKey = getEnv("QDRANT_API_KEY", "")
	cfg.QdrantPageSize = cfg.getEnvInt("QDRANT_PAGE_SIZE", 256)

	cfg.Provider = strings.ToLower(getEnv("PROVIDER", "openai"))
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", "")
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", "")
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "")
	cfg.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", "")
	cfg.OllamaModel = getEnv("OLLAMA_MODEL", "")
	cfg.EmbedDim = cfg.getEnvInt("EMBED_DIM", 1536)

	cfg.ChunkingStrategy = strings.ToLower(getEnv("CHUNKING_STRATEGY", "sentence_splitter"))
	cfg.ChunkSize = cfg.getEnvInt("CHUNK_SIZE", 500)
	cfg.Concurrency = cfg.getEnvInt("CONCURRENCY", 5)
	cfg.EmbedConcurrency = cfg.getEnvInt("EMBED_CONCURRENCY", 4)
	cfg.FetchTimeoutSeconds = cfg.getEnvInt("FETCH_TIMEOUT_SECONDS", 120)

	cfg.DistanceThreshold = cfg.getEnvFloat("DISTANCE_THRESHOLD", 0.5)
	cfg.DistanceOperator = getEnv("DISTANCE_OPERATOR", "cosine")
	cfg.SearchPageTags = cfg.getEnvBool("SEARCH_PAGE_TAGS", true)

	cfg.AwsAccessKey = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "eu-north-1")

	cfg.Port = getEnv("PORT", "8080")
	cfg.CorsOrigins = splitList(getEnv("CORS_ORIGINS", "*"))
	cfg.LogDebug = cfg.getEnvBool("LOG_DEBUG", false)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL not set"))
		}
	case BackendQdrant:
		if c.QdrantHost == "" {
			errs = append(errs, errors.New("QDRANT_HOST not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q not supported", c.StoreBackend))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("CONCURRENCY must be positive, got %d", c.Concurrency))
	}
	if c.EmbedConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_CONCURRENCY must be positive, got %d", c.EmbedConcurrency))
	}
	if c.Provider != "" && !knownProviders[c.Provider] {
		errs = append(errs, fmt.Errorf("PROVIDER %q not supported", c.Provider))
	}
	if c.ChunkingStrategy != "" && !knownStrategies[c.ChunkingStrategy] {
		errs = append(errs, fmt.Errorf("CHUNKING_STRATEGY %q not supported", c.ChunkingStrategy))
	}
	if c.DistanceOperator != "" && !knownOperators[strings.ToLower(c.DistanceOperator)] {
		errs = append(errs, fmt.Errorf("DISTANCE_OPERATOR %q not supported", c.DistanceOperator))
	}
	if c.DistanceThreshold < 0 {
		errs = append(errs, fmt.Errorf("DISTANCE_THRESHOLD must not be negative, got %v", c.DistanceThreshold))
	}
	return errors.Join(errs...)
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func (c *Config) getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.warnf("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func (c *Config) getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.warnf("%s=%q not a number, using default %v", key, v, def)
		return def
	}
	return f
}

func (c *Config) getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.warnf("%s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
