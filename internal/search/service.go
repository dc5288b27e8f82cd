package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

var ErrEmptyQuery = errors.New("query is empty")

// Service embeds a query with the configured provider, runs the nearest
// neighbour query and aggregates the hits.
type Service struct {
	store    core.BookStore
	embedder core.EmbeddingProvider
	operator core.DistanceOperator
	agg      Aggregator
	logger   *zap.Logger
}

func NewService(store core.BookStore, embedder core.EmbeddingProvider, operator core.DistanceOperator, agg Aggregator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, operator: operator, agg: agg, logger: logger}
}

// Search returns ErrEmptyQuery for a blank query. Embedding and store
// failures are logged and yield an empty result.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResultGroup, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	start := time.Now()

	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		s.logger.Error("embed query failed", zap.String("provider", s.embedder.Name()), zap.Error(err))
		return []models.SearchResultGroup{}, nil
	}

	hits, err := s.store.Search(ctx, core.SearchQuery{
		Vector:    vec,
		Provider:  s.embedder.Name(),
		Table:     s.embedder.TableName(),
		Operator:  s.operator,
		Threshold: s.agg.Threshold,
	})
	if err != nil {
		s.logger.Error("nearest neighbour query failed", zap.String("table", s.embedder.TableName()), zap.Error(err))
		return []models.SearchResultGroup{}, nil
	}

	groups := s.agg.Aggregate(hits)
	s.logger.Debug("search served",
		zap.Int("hits", len(hits)),
		zap.Int("groups", len(groups)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return groups, nil
}

// embedQuery prefers the provider's query embedding when it has one.
func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if qe, ok := s.embedder.(core.QueryEmbedder); ok {
		return qe.EmbedQuery(ctx, query)
	}
	return s.embedder.Embed(ctx, query)
}

func (s *Service) Books(ctx context.Context) ([]models.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// Book returns core.ErrBookNotFound when no book has the URL.
func (s *Service) Book(ctx context.Context, bookURL string) (*models.Book, error) {
	b, err := s.store.FindBook(ctx, bookURL)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, core.ErrBookNotFound
	}
	return b, nil
}
