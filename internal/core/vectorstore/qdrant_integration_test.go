//go:build integration

package vectorstore

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

func newTestStore(t *testing.T) *QdrantStore {
	t.Helper()
	host := os.Getenv("TEST_QDRANT_HOST")
	if host == "" {
		t.Skip("TEST_QDRANT_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_QDRANT_PORT"))
	if port == 0 {
		port = 6334
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewQdrantStore(ctx, Config{Host: host, Port: port, Operator: core.DistanceCosine})
	if err != nil {
		t.Skipf("qdrant unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestQdrantSaveAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bookURL := fmt.Sprintf("https://example.org/%d.pdf", time.Now().UnixNano())
	provider := "it"
	table := "it_chunks"

	chunks := []models.Chunk{
		{Page: 1, Ordinal: 0, Text: "En lang nok tekstbid om højskoler.", Embedding: []float32{1, 0, 0}, Provider: provider},
		{Page: 2, Ordinal: 1, Text: "En lang nok tekstbid om andelsbevægelsen.", Embedding: []float32{0, 1, 0}, Provider: provider},
	}
	stored, err := s.SaveBook(ctx, &models.Book{URL: bookURL, Title: "T", Author: "A", PageCount: 2}, table, chunks)
	require.NoError(t, err)
	assert.Equal(t, "T", stored.Title)

	again, err := s.SaveBook(ctx, &models.Book{URL: bookURL, Title: "Other"}, table, chunks)
	assert.ErrorIs(t, err, core.ErrAlreadyEmbedded)
	assert.Equal(t, "T", again.Title)

	hits, err := s.Search(ctx, core.SearchQuery{Vector: []float32{1, 0, 0}, Provider: provider, Table: table, Operator: core.DistanceCosine, Threshold: 0.5})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, 1, hits[0].Page)
}
