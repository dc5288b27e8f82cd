package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steentj/dho-sub001/internal/models"
)

type stubStrategy struct {
	chunks    []string
	crossPage bool
}

func (s stubStrategy) Name() string                        { return "stub" }
func (s stubStrategy) SupportsCrossPage() bool             { return s.crossPage }
func (s stubStrategy) Chunk(string, int, string) []string { return s.chunks }

func TestFindStartingPage(t *testing.T) {
	markers := []PageMarker{{Offset: 0, Page: 1}, {Offset: 120, Page: 2}, {Offset: 250, Page: 3}}

	tests := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{119, 1},
		{120, 2},
		{249, 2},
		{250, 3},
		{10_000, 3},
	}
	for _, tt := range tests {
		if got := FindStartingPage(tt.offset, markers); got != tt.want {
			t.Errorf("FindStartingPage(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}

	if got := FindStartingPage(0, nil); got != 1 {
		t.Errorf("FindStartingPage(0, nil) = %d, want 1", got)
	}
}

func TestFindStartingPageSkipsEmptyPages(t *testing.T) {
	_, markers := BuildStream([]models.Page{
		{Number: 1, Text: "a1 a2 a3 a4."},
		{Number: 2, Text: "   "},
		{Number: 3, Text: "c1 c2 c3 c4."},
	})
	assert.Equal(t, []PageMarker{{0, 1}, {4, 2}, {4, 3}}, markers)
	assert.Equal(t, 3, FindStartingPage(4, markers))
}

func TestAssembleCrossPage(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "a1 a2 a3 a4.\nb1 b2 b3 b4."},
		{Number: 2, Text: "c1 c2 c3 c4. d1 d2 d3 d4."},
		{Number: 3, Text: "e1 e2 e3 e4."},
	}

	got := Assemble(pages, 10, WordOverlap{}, "Bog")

	require.Len(t, got, 4)
	wantPages := []int{1, 1, 2, 2}
	for i, pc := range got {
		assert.Equal(t, wantPages[i], pc.Page, "chunk %d: %q", i, pc.Text)
	}
	assert.Equal(t, "b1 b2 b3 b4. c1 c2 c3 c4.", got[1].Text)
}

func TestAssemblePerPage(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "Alpha beta. Gamma delta."},
		{Number: 2, Text: "   "},
		{Number: 3, Text: "Epsilon zeta."},
	}

	got := Assemble(pages, 100, SentenceSplitter{}, "T")

	assert.Equal(t, []models.PageChunk{
		{Page: 1, Text: "##T##Alpha beta. Gamma delta."},
		{Page: 3, Text: "##T##Epsilon zeta."},
	}, got)
}

func TestAssembleDropsBlankChunks(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "intro words"},
		{Number: 2, Text: "real text here"},
	}
	strategy := stubStrategy{chunks: []string{"", "##T##  ", "real text here"}, crossPage: true}

	got := Assemble(pages, 10, strategy, "T")

	assert.Equal(t, []models.PageChunk{{Page: 2, Text: "real text here"}}, got)
}

func TestAssembleStartingPagesStayInRange(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "Første side slutter midt i en"},
		{Number: 2, Text: "sætning. Og så fortsætter teksten her. Endnu en sætning."},
		{Number: 3, Text: "Sidste side."},
	}
	for _, s := range []Strategy{SentenceSplitter{}, WordOverlap{}} {
		for _, pc := range Assemble(pages, 5, s, "") {
			assert.GreaterOrEqual(t, pc.Page, 1, s.Name())
			assert.LessOrEqual(t, pc.Page, len(pages), s.Name())
		}
	}
}

func TestLocate(t *testing.T) {
	stream := []string{"x", "y", "x", "y", "z"}
	assert.Equal(t, 0, locate(stream, []string{"x", "y"}, 0))
	assert.Equal(t, 2, locate(stream, []string{"x", "y"}, 1))
	assert.Equal(t, 3, locate(stream, []string{"q"}, 3))
	assert.Equal(t, 1, locate(stream, nil, 1))
}
