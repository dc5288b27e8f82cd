package ingestion_engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

const importJSONL = `{"url":"https://example.org/a.pdf","title":"Bog A","page_count":3,"chunks":[{"page":1,"text":"Normal text"},{"page":2,"text":["This","is","a","list"]},{"page":9,"text":12345},{"page":0,"text":"   "}]}

{"url":"https://example.org/b.pdf","chunks":[]}
`

func TestReadImportFile(t *testing.T) {
	recs, err := ReadImportFile(strings.NewReader(importJSONL))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Bog A", recs[0].Title)
	assert.Len(t, recs[0].Chunks, 4)
}

func TestReadImportFileReportsLine(t *testing.T) {
	_, err := ReadImportFile(strings.NewReader("{\"url\":\"x\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestImportCoercesChunkText(t *testing.T) {
	recs, err := ReadImportFile(strings.NewReader(importJSONL))
	require.NoError(t, err)

	f := newFixture(t)
	f.embedder.EXPECT().HasEmbeddingsForBook(gomock.Any(), f.store, gomock.Any()).Return(false, nil).Times(2)
	f.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).DoAndReturn(lengthVector).Times(3)

	var saved []models.Chunk
	f.store.EXPECT().SaveBook(gomock.Any(), gomock.Any(), "chunks_dummy", gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Book, _ string, chunks []models.Chunk) (*models.Book, error) {
			assert.Equal(t, 3, b.PageCount)
			saved = chunks
			return b, nil
		})

	br := f.ingestor(IngestConfig{}).Import(context.Background(), recs)

	assert.Equal(t, 1, br.Done)
	assert.Equal(t, 1, br.Failed)
	require.Len(t, saved, 3)
	assert.Equal(t, "Normal text", saved[0].Text)
	assert.Equal(t, "This is a list", saved[1].Text)
	assert.Equal(t, "12345", saved[2].Text)
	assert.Equal(t, []int{1, 2, 3}, []int{saved[0].Page, saved[1].Page, saved[2].Page})
}

func TestReadImportFileKeepsLargeNumbersExact(t *testing.T) {
	recs, err := ReadImportFile(strings.NewReader(`{"url":"u","chunks":[{"page":1,"text":12345678901234567890},{"page":1,"text":0.1}]}`))
	require.NoError(t, err)
	require.Len(t, recs[0].Chunks, 2)

	text, coerced := CoerceText(recs[0].Chunks[0].Text)
	assert.True(t, coerced)
	assert.Equal(t, "12345678901234567890", text)

	text, _ = CoerceText(recs[0].Chunks[1].Text)
	assert.Equal(t, "0.1", text)
}

func TestReadImportFileRejectsTrailingData(t *testing.T) {
	_, err := ReadImportFile(strings.NewReader(`{"url":"u"} {"url":"v"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestImportWithoutPageCountUsesHighestPage(t *testing.T) {
	rec := ImportRecord{
		URL: "https://example.org/c.pdf",
		Chunks: []ImportChunk{
			{Page: 2, Text: "Anden side"},
			{Page: 7, Text: "Syvende side"},
			{Page: 0, Text: "Uden side"},
		},
	}

	f := newFixture(t)
	f.embedder.EXPECT().HasEmbeddingsForBook(gomock.Any(), f.store, rec.URL).Return(false, nil)
	f.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).DoAndReturn(lengthVector).Times(3)
	f.store.EXPECT().SaveBook(gomock.Any(), gomock.Any(), "chunks_dummy", gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Book, _ string, chunks []models.Chunk) (*models.Book, error) {
			assert.Equal(t, 7, b.PageCount)
			for _, c := range chunks {
				assert.GreaterOrEqual(t, c.Page, 1)
				assert.LessOrEqual(t, c.Page, b.PageCount)
			}
			return b, nil
		})

	res := f.ingestor(IngestConfig{}).ImportBook(context.Background(), rec)
	assert.Equal(t, OutcomeDone, res.Outcome)
}

func TestImportRecoversFromPanic(t *testing.T) {
	recs := []ImportRecord{
		{URL: "https://example.org/p.pdf", Chunks: []ImportChunk{{Page: 1, Text: "Tekst"}}},
	}

	f := newFixture(t)
	f.embedder.EXPECT().HasEmbeddingsForBook(gomock.Any(), f.store, gomock.Any()).
		DoAndReturn(func(context.Context, core.EmbeddingLookup, string) (bool, error) { panic("lookup exploded") })

	br := f.ingestor(IngestConfig{}).Import(context.Background(), recs)

	assert.Equal(t, 1, br.Failed)
	require.Len(t, br.Results, 1)
	assert.Equal(t, OutcomeFailed, br.Results[0].Outcome)
	assert.Contains(t, br.Results[0].Err.Error(), "lookup exploded")
}
