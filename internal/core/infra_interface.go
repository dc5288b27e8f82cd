package core

import (
	"context"

	"github.com/steentj/dho-sub001/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_book_store.go -package=mocks github.com/steentj/dho-sub001/internal/core BookStore

// SearchQuery describes one nearest-neighbour lookup.
type SearchQuery struct {
	Vector    []float32
	Provider  string
	Table     string
	Operator  DistanceOperator
	Threshold float64
}

// MinChunkLength is the trimmed length a chunk must exceed to be searchable.
const MinChunkLength = 20

// BookStore persists books and their per-provider chunks. Every backend
// implements it the same way, so callers never branch on the concrete type.
type BookStore interface {
	EmbeddingLookup

	FindBook(ctx context.Context, url string) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)

	// SaveBook creates the book unless it exists and appends the chunks to
	// table in one unit of work. It returns the stored book, whose metadata
	// wins over the one passed in. ErrAlreadyEmbedded means the provider
	// of the chunks already has rows for this book.
	SaveBook(ctx context.Context, book *models.Book, table string, chunks []models.Chunk) (*models.Book, error)

	// Search returns rows ordered by ascending distance.
	Search(ctx context.Context, q SearchQuery) ([]models.SearchHit, error)

	Close() error
}

// ObjectClient reads objects from S3 or any compatible storage.
type ObjectClient interface {
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
