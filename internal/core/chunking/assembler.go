package chunking

import (
	"sort"
	"strings"

	"github.com/steentj/dho-sub001/internal/models"
)

// PageMarker records the cumulative word offset at which a page begins.
type PageMarker struct {
	Offset int
	Page   int
}

// anchorWords is how many leading words of a chunk are matched against the
// stream to find where the chunk starts.
const anchorWords = 8

// Assemble chunks the pages of one book and tags every chunk with the page
// it starts on. Blank chunks are dropped.
func Assemble(pages []models.Page, maxWords int, strategy Strategy, title string) []models.PageChunk {
	if !strategy.SupportsCrossPage() {
		return assemblePerPage(pages, maxWords, strategy, title)
	}

	words, markers := BuildStream(pages)
	text := strings.Join(words, " ")

	var (
		out  []models.PageChunk
		prev int
	)
	for _, c := range strategy.Chunk(text, maxWords, title) {
		if IsBlank(c) {
			continue
		}
		start := locate(words, strings.Fields(StripTitle(c)), prev)
		prev = start
		out = append(out, models.PageChunk{Page: FindStartingPage(start, markers), Text: c})
	}
	return out
}

func assemblePerPage(pages []models.Page, maxWords int, strategy Strategy, title string) []models.PageChunk {
	var out []models.PageChunk
	for _, p := range pages {
		for _, c := range strategy.Chunk(p.Text, maxWords, title) {
			if IsBlank(c) {
				continue
			}
			out = append(out, models.PageChunk{Page: p.Number, Text: c})
		}
	}
	return out
}

// BuildStream flattens pages into one word stream and records, for every
// page, the number of words that precede it.
func BuildStream(pages []models.Page) ([]string, []PageMarker) {
	var (
		words   []string
		markers = make([]PageMarker, 0, len(pages))
	)
	for _, p := range pages {
		markers = append(markers, PageMarker{Offset: len(words), Page: p.Number})
		words = append(words, strings.Fields(p.Text)...)
	}
	return words, markers
}

// FindStartingPage returns the page of the greatest marker whose offset is
// <= offset. Pages without words share an offset with their successor, in
// which case the later page wins. It returns 1 when there are no markers.
func FindStartingPage(offset int, markers []PageMarker) int {
	if len(markers) == 0 {
		return 1
	}
	i := sort.Search(len(markers), func(i int) bool { return markers[i].Offset > offset })
	if i == 0 {
		return markers[0].Page
	}
	return markers[i-1].Page
}

// locate finds the first position >= from where the leading words of chunk
// appear in the stream. It falls back to from when nothing matches.
func locate(stream, chunk []string, from int) int {
	n := len(chunk)
	if n > anchorWords {
		n = anchorWords
	}
	if n == 0 {
		return from
	}
	for pos := from; pos+n <= len(stream); pos++ {
		if equalWords(stream[pos:pos+n], chunk[:n]) {
			return pos
		}
	}
	return from
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
