package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"

	"github.com/steentj/dho-sub001/internal/core"
)

const (
	DefaultOpenAIModel      = "text-embedding-3-small"
	DefaultOpenAIDimensions = 1536
	openAITable             = "chunks"
)

var _ core.EmbeddingProvider = (*OpenAIEmbedder)(nil)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIEmbedder embeds text with the OpenAI embeddings API. Rate limit
// responses are retried with exponential backoff, other errors are not.
type OpenAIEmbedder struct {
	binding
	client     openai.Client
	model      string
	newBackOff func() backoff.BackOff
}

func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(cfg.APIKey),
		oaioption.WithMaxRetries(0),
		oaioption.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEmbedder{
		binding: binding{name: string(ProviderOpenAI), table: openAITable, dim: DefaultOpenAIDimensions},
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: []string{text},
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Data) == 0 {
			return backoff.Permanent(errors.New("empty embedding response"))
		}
		vec = toFloat32(resp.Data[0].Embedding)
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(e.newBackOff(), ctx)); err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	return e.checkDimensions(vec)
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
