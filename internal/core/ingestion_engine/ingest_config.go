package ingestion_engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/core/chunking"
)

// IngestConfig tunes a run.
//
// ChunkSize:        maximum words per chunk handed to the strategy.
// Concurrency:      books processed at the same time.
// EmbedConcurrency: embedding calls in flight for one book.
// FetchTimeout:     deadline for downloading one PDF.
type IngestConfig struct {
	ChunkSize        int
	Concurrency      int
	EmbedConcurrency int
	FetchTimeout     time.Duration
}

func (c IngestConfig) withDefaults() IngestConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 500
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 5
	}
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = 1
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 2 * time.Minute
	}
	return c
}

// BookIngestor runs fetch, extract, chunk, embed and persist for books.
//
// store:     persistence for books and chunks.
// fetcher:   downloads PDF bytes for a source URL.
// extractor: turns PDF bytes into per-page text.
// embedder:  the provider whose table receives the chunks.
// strategy:  the chunking strategy.
type BookIngestor struct {
	store     core.BookStore
	fetcher   core.Fetcher
	extractor core.PageExtractor
	embedder  core.EmbeddingProvider
	strategy  chunking.Strategy
	cfg       IngestConfig
	logger    *zap.Logger
}

type Option func(*BookIngestor)

func WithLogger(l *zap.Logger) Option {
	return func(i *BookIngestor) { i.logger = l }
}

func NewBookIngestor(
	store core.BookStore,
	fetcher core.Fetcher,
	extractor core.PageExtractor,
	embedder core.EmbeddingProvider,
	strategy chunking.Strategy,
	cfg IngestConfig,
	opts ...Option,
) *BookIngestor {
	i := &BookIngestor{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		embedder:  embedder,
		strategy:  strategy,
		cfg:       cfg.withDefaults(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}
