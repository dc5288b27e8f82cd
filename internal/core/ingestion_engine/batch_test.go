package ingestion_engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

func TestRunIsolatesFailuresAndBoundsConcurrency(t *testing.T) {
	f := newFixture(t)
	sources := []models.Source{{URL: "ok-1"}, {URL: "missing"}, {URL: "ok-2"}, {URL: "broken"}, {URL: "done"}}

	var inFlight, peak atomic.Int32
	track := func() func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return func() { inFlight.Add(-1) }
	}

	f.embedder.EXPECT().HasEmbeddingsForBook(gomock.Any(), f.store, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ core.EmbeddingLookup, url string) (bool, error) {
			return url == "done", nil
		}).Times(len(sources))
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, url string) ([]byte, error) {
			defer track()()
			time.Sleep(10 * time.Millisecond)
			if url == "missing" {
				return nil, &FetchError{URL: url, StatusCode: 404}
			}
			return []byte(url), nil
		}).Times(4)
	f.extractor.EXPECT().ExtractPages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, data []byte) (*models.ExtractedDocument, error) {
			if string(data) == "broken" {
				return nil, errors.New("corrupt pdf")
			}
			return twoPages(), nil
		}).Times(3)
	f.store.EXPECT().FindBook(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	f.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).DoAndReturn(lengthVector).AnyTimes()
	f.store.EXPECT().SaveBook(gomock.Any(), gomock.Any(), "chunks_dummy", gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Book, _ string, _ []models.Chunk) (*models.Book, error) {
			return b, nil
		}).Times(2)

	br := f.ingestor(IngestConfig{Concurrency: 2}).Run(context.Background(), sources)

	assert.NotEmpty(t, br.RunID)
	assert.Equal(t, 5, br.Total)
	assert.Equal(t, 2, br.Done)
	assert.Equal(t, 2, br.Skipped)
	assert.Equal(t, 1, br.Failed)
	require.Len(t, br.Results, 5)
	for n, r := range br.Results {
		assert.Equal(t, sources[n].URL, r.URL)
	}
	assert.Equal(t, OutcomeFailed, br.Results[3].Outcome)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunEmpty(t *testing.T) {
	f := newFixture(t)
	br := f.ingestor(IngestConfig{}).Run(context.Background(), nil)
	assert.Equal(t, 0, br.Total)
	assert.Empty(t, br.Results)
}
