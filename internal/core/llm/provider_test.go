package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/steentj/dho-sub001/internal/core/mocks"
)

func TestParseProviderKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderKind
		wantErr bool
	}{
		{"openai", ProviderOpenAI, false},
		{" Ollama ", ProviderOllama, false},
		{"GEMINI", ProviderGemini, false},
		{"dummy", ProviderDummy, false},
		{"", "", true},
		{"sentence-transformers", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProviderKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseProviderKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("ParseProviderKind(%q) error = %v, want ErrUnknownProvider", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseProviderKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewEmbeddingProviderBindsTables(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		kind  ProviderKind
		s     Settings
		name  string
		table string
		dim   int
	}{
		{ProviderOpenAI, Settings{OpenAIAPIKey: "sk-test"}, "openai", "chunks", 1536},
		{ProviderOllama, Settings{}, "ollama", "chunks_nomic", 768},
		{ProviderDummy, Settings{Dimensions: 32}, "dummy", "chunks_dummy", 32},
	}
	for _, tt := range tests {
		p, err := NewEmbeddingProvider(ctx, tt.kind, tt.s)
		require.NoError(t, err, tt.kind)
		assert.Equal(t, tt.name, p.Name())
		assert.Equal(t, tt.table, p.TableName())
		assert.Equal(t, tt.dim, p.Dimensions())
	}

	_, err := NewEmbeddingProvider(ctx, ProviderKind("word2vec"), Settings{})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = NewEmbeddingProvider(ctx, ProviderOpenAI, Settings{})
	assert.Error(t, err, "openai without api key")
}

func TestHasEmbeddingsForBookIsProviderScoped(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockEmbeddingLookup(ctrl)
	ctx := context.Background()

	lookup.EXPECT().HasEmbeddings(ctx, "https://x/b1.pdf", "dummy", "chunks_dummy").Return(false, nil)
	lookup.EXPECT().HasEmbeddings(ctx, "https://x/b1.pdf", "ollama", "chunks_nomic").Return(true, nil)

	has, err := NewDummyEmbedder(8).HasEmbeddingsForBook(ctx, lookup, "https://x/b1.pdf")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = NewOllamaEmbedder(OllamaConfig{}).HasEmbeddingsForBook(ctx, lookup, "https://x/b1.pdf")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCheckDimensions(t *testing.T) {
	b := binding{name: "x", dim: 3}

	_, err := b.checkDimensions([]float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	vec, err := b.checkDimensions([]float32{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}
