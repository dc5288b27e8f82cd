package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/steentj/dho-sub001/internal/core"
)

// ProviderKind enumerates the embedding backends.
type ProviderKind string

const (
	ProviderOpenAI ProviderKind = "openai"
	ProviderOllama ProviderKind = "ollama"
	ProviderGemini ProviderKind = "gemini"
	ProviderDummy  ProviderKind = "dummy"
)

var (
	ErrUnknownProvider   = errors.New("unknown embedding provider")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ParseProviderKind maps a configuration value onto a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch k := ProviderKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ProviderOpenAI, ProviderOllama, ProviderGemini, ProviderDummy:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Settings carries the options of every provider kind; each constructor
// reads only its own fields.
type Settings struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GeminiAPIKey string
	GeminiModel  string

	OllamaBaseURL string
	OllamaModel   string

	// Dimensions sizes the dummy provider's vectors.
	Dimensions int
	Timeout    time.Duration
}

// NewEmbeddingProvider builds the provider for kind.
func NewEmbeddingProvider(ctx context.Context, kind ProviderKind, s Settings) (core.EmbeddingProvider, error) {
	switch kind {
	case ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{APIKey: s.OpenAIAPIKey, BaseURL: s.OpenAIBaseURL, Model: s.OpenAIModel, Timeout: s.Timeout})
	case ProviderOllama:
		return NewOllamaEmbedder(OllamaConfig{BaseURL: s.OllamaBaseURL, Model: s.OllamaModel, Timeout: s.Timeout}), nil
	case ProviderGemini:
		return NewGeminiEmbedder(ctx, s.GeminiAPIKey, s.GeminiModel)
	case ProviderDummy:
		return NewDummyEmbedder(s.Dimensions), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
}

// binding holds what every provider shares: its identity, its table and
// its vector size.
type binding struct {
	name  string
	table string
	dim   int
}

func (b binding) Name() string      { return b.name }
func (b binding) TableName() string { return b.table }
func (b binding) Dimensions() int   { return b.dim }

func (b binding) HasEmbeddingsForBook(ctx context.Context, lookup core.EmbeddingLookup, bookURL string) (bool, error) {
	return lookup.HasEmbeddings(ctx, bookURL, b.name, b.table)
}

func (b binding) checkDimensions(vec []float32) ([]float32, error) {
	if len(vec) != b.dim {
		return nil, fmt.Errorf("%w: %s returned %d values, want %d", ErrDimensionMismatch, b.name, len(vec), b.dim)
	}
	return vec, nil
}

func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
