package core

import "context"

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedding_provider.go -package=mocks github.com/steentj/dho-sub001/internal/core EmbeddingProvider,EmbeddingLookup

// EmbeddingProvider turns chunk text into a fixed-length vector. Each
// provider owns a storage table, so several providers can embed the same
// book side by side.
type EmbeddingProvider interface {
	Name() string
	TableName() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)

	// HasEmbeddingsForBook reports whether this provider already stored
	// chunks for the book. Other providers' rows are ignored.
	HasEmbeddingsForBook(ctx context.Context, lookup EmbeddingLookup, bookURL string) (bool, error)
}

// QueryEmbedder is implemented by providers that embed search queries
// differently from stored chunks.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingLookup is the slice of BookStore a provider needs for dedup.
type EmbeddingLookup interface {
	HasEmbeddings(ctx context.Context, bookURL, provider, table string) (bool, error)
}
