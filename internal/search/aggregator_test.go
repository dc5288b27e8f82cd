package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steentj/dho-sub001/internal/models"
)

func hit(url string, page int, chunk string, d float64) models.SearchHit {
	return models.SearchHit{BookURL: url, Title: "T-" + url, Author: "A-" + url, Page: page, Chunk: chunk, Distance: d}
}

func TestAggregateThreshold(t *testing.T) {
	var hits []models.SearchHit
	for n, d := range []float64{0.1, 0.25, 0.35, 0.5, 0.8} {
		hits = append(hits, hit("b.pdf", n+1, "tekst", d))
	}

	groups := Aggregator{Threshold: 0.3}.Aggregate(hits)

	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].ChunkCount)
	assert.Equal(t, []int{1, 2}, groups[0].Pages)
	assert.Equal(t, 0.1, groups[0].Distance)
}

func TestAggregateEndToEnd(t *testing.T) {
	hits := []models.SearchHit{
		{BookURL: "b1.pdf", Title: "T1", Author: "A1", Page: 1, Chunk: "chunk-a", Distance: 0.2},
		{BookURL: "b1.pdf", Title: "T1", Author: "A1", Page: 5, Chunk: "chunk-b", Distance: 0.4},
		{BookURL: "b2.pdf", Title: "T2", Author: "A2", Page: 3, Chunk: "chunk-c", Distance: 0.3},
	}

	groups := Aggregator{Threshold: 0.5}.Aggregate(hits)

	require.Len(t, groups, 2)
	b1, b2 := groups[0], groups[1]

	assert.Equal(t, "b1.pdf", b1.PublicURL)
	assert.Equal(t, "b1.pdf#page=1", b1.InternalURL)
	assert.Equal(t, []int{1, 5}, b1.Pages)
	assert.Equal(t, 2, b1.ChunkCount)
	assert.Equal(t, 0.2, b1.Distance)
	assert.Equal(t, "chunk-a\n\n---\n\nchunk-b", b1.Chunk)
	assert.Equal(t, "T1", b1.Title)

	assert.Equal(t, "b2.pdf", b2.PublicURL)
	assert.Equal(t, []int{3}, b2.Pages)
	assert.Equal(t, 0.3, b2.Distance)
}

func TestAggregateOrdersGroupsAndSegments(t *testing.T) {
	hits := []models.SearchHit{
		hit("x.pdf", 9, "far in x", 0.45),
		hit("y.pdf", 2, "best in y", 0.05),
		hit("x.pdf", 4, "best in x", 0.15),
		hit("z.pdf", 7, "only z", 0.3),
		hit("x.pdf", 4, "again page four", 0.2),
	}

	groups := Aggregator{Threshold: 0.5}.Aggregate(hits)

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"y.pdf", "x.pdf", "z.pdf"},
		[]string{groups[0].PublicURL, groups[1].PublicURL, groups[2].PublicURL})

	x := groups[1]
	assert.Equal(t, "x.pdf#page=4", x.InternalURL)
	assert.Equal(t, []int{4, 9}, x.Pages)
	assert.Equal(t, 3, x.ChunkCount)
	assert.Equal(t, []string{"best in x", "again page four", "far in x"}, strings.Split(x.Chunk, segmentSeparator))
}

func TestAggregateGroupInvariants(t *testing.T) {
	hits := []models.SearchHit{
		hit("a.pdf#page=3", 3, "one", 0.4),
		hit("a.pdf", 8, "two", 0.1),
		hit("b.pdf", 1, "three", 0.2),
	}

	groups := Aggregator{Threshold: 0.5}.Aggregate(hits)

	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.NotContains(t, g.PublicURL, "#page=")
		assert.Contains(t, g.InternalURL, "#page=")
	}
	assert.Equal(t, "a.pdf#page=8", groups[0].InternalURL)
	assert.Equal(t, 0.1, groups[0].Distance)
}

func TestAggregateStripsTitleAndTagsPages(t *testing.T) {
	hits := []models.SearchHit{hit("a.pdf", 12, "##Bogen##  Selve teksten ", 0.1)}

	groups := Aggregator{Threshold: 0.5, PageTags: true}.Aggregate(hits)

	require.Len(t, groups, 1)
	assert.Equal(t, "[Side 12] Selve teksten", groups[0].Chunk)
}

func TestAggregateEmpty(t *testing.T) {
	groups := Aggregator{Threshold: 0.5}.Aggregate(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}
