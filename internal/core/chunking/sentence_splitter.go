package chunking

import "strings"

// SentenceSplitter packs whole sentences greedily, one page at a time, and
// tags every chunk with the book title.
type SentenceSplitter struct{}

var _ Strategy = SentenceSplitter{}

func (SentenceSplitter) Name() string { return StrategySentenceSplitter }

func (SentenceSplitter) SupportsCrossPage() bool { return false }

func (SentenceSplitter) Chunk(text string, maxWords int, title string) []string {
	var (
		chunks []string
		cur    []string
		words  int
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, TagTitle(title, strings.Join(cur, " ")))
		}
		cur, words = nil, 0
	}

	for _, s := range splitSentences(text) {
		n := wordCount(s)
		if len(cur) > 0 && words+n > maxWords {
			flush()
		}
		// An oversized sentence lands alone in cur and is flushed by the
		// next sentence.
		cur = append(cur, s)
		words += n
	}
	flush()
	return chunks
}
