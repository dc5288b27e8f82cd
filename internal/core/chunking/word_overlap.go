package chunking

import "strings"

// overlapRatio is the share of maxWords carried into the next chunk.
const overlapRatio = 0.10

// WordOverlap chunks the whole book as one stream and repeats the trailing
// sentences of each chunk at the start of the next one.
type WordOverlap struct{}

var _ Strategy = WordOverlap{}

func (WordOverlap) Name() string { return StrategyWordOverlap }

func (WordOverlap) SupportsCrossPage() bool { return true }

// Chunk ignores title. Cross-page chunks are embedded untagged.
func (WordOverlap) Chunk(text string, maxWords int, _ string) []string {
	budget := int(float64(maxWords) * overlapRatio)
	if budget < 1 {
		budget = 1
	}

	var (
		chunks []string
		cur    []string
		words  int
		fresh  int // sentences in cur that were not carried over
	)
	for _, s := range splitSentences(text) {
		n := wordCount(s)
		if fresh > 0 && words+n > maxWords {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = overlapTail(cur, budget, maxWords)
			words = countWords(cur)
			fresh = 0
		}
		if fresh == 0 && len(cur) > 0 && words+n > maxWords {
			// the carried tail would push this sentence over the limit
			cur, words = nil, 0
		}
		cur = append(cur, s)
		words += n
		fresh++
	}
	if fresh > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// overlapTail returns the longest run of trailing sentences that fits in
// budget words. When none fits, the last sentence alone is carried if it is
// at most half of maxWords. A chunk of one sentence carries nothing, so an
// oversized sentence is never repeated.
func overlapTail(sentences []string, budget, maxWords int) []string {
	if len(sentences) < 2 {
		return nil
	}
	start, words := len(sentences), 0
	// The first sentence always stays behind so consecutive chunks start at
	// different offsets.
	for start > 1 {
		n := wordCount(sentences[start-1])
		if words+n > budget {
			break
		}
		words += n
		start--
	}
	if start == len(sentences) {
		if wordCount(sentences[start-1]) > maxWords/2 {
			return nil
		}
		start--
	}
	tail := make([]string, len(sentences)-start)
	copy(tail, sentences[start:])
	return tail
}
