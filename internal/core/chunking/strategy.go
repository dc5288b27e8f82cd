package chunking

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	StrategySentenceSplitter = "sentence_splitter"
	StrategyWordOverlap      = "word_overlap"
)

var ErrUnknownStrategy = errors.New("unknown chunking strategy")

// Strategy splits text into chunks of at most maxWords words, sentence
// boundaries permitting.
type Strategy interface {
	Name() string
	Chunk(text string, maxWords int, title string) []string

	// SupportsCrossPage reports whether the strategy wants the whole book
	// as one stream instead of one call per page.
	SupportsCrossPage() bool
}

// NewStrategy builds the strategy registered under name.
func NewStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategySentenceSplitter:
		return SentenceSplitter{}, nil
	case StrategyWordOverlap:
		return WordOverlap{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// splitSentences breaks text after '.', '!' or '?' when followed by
// whitespace. Whitespace inside a sentence is collapsed to single spaces.
func splitSentences(text string) []string {
	var (
		sentences []string
		cur       strings.Builder
	)
	runes := []rune(text)
	flush := func() {
		s := strings.Join(strings.Fields(cur.String()), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}
	for i, r := range runes {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()
	return sentences
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func countWords(sentences []string) int {
	n := 0
	for _, s := range sentences {
		n += wordCount(s)
	}
	return n
}
