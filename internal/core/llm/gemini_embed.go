package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/steentj/dho-sub001/internal/core"
)

const (
	DefaultGeminiModel      = "text-embedding-004"
	DefaultGeminiDimensions = 768
	geminiTable             = "chunks_gemini"
)

var (
	_ core.EmbeddingProvider = (*GeminiEmbedder)(nil)
	_ core.QueryEmbedder     = (*GeminiEmbedder)(nil)
)

type GeminiEmbedder struct {
	binding
	client    *genai.Client
	modelName string
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiEmbedder{
		binding:   binding{name: string(ProviderGemini), table: geminiTable, dim: DefaultGeminiDimensions},
		client:    cl,
		modelName: modelName,
	}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Embed embeds chunk text for storage.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, genai.TaskTypeRetrievalDocument)
}

// EmbedQuery embeds a search query against stored documents.
func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, genai.TaskTypeRetrievalQuery)
}

func (g *GeminiEmbedder) embed(ctx context.Context, text string, task genai.TaskType) ([]float32, error) {
	em := g.client.EmbeddingModel(g.modelName)
	em.TaskType = task

	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp.Embedding == nil {
		return nil, errors.New("gemini embed: empty response")
	}
	return g.checkDimensions(resp.Embedding.Values)
}
