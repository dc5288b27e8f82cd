package chunking

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySentenceSplitter, s.Name())

	s, err = NewStrategy("Word_Overlap")
	require.NoError(t, err)
	assert.Equal(t, StrategyWordOverlap, s.Name())
	assert.True(t, s.SupportsCrossPage())

	_, err = NewStrategy("paragraph")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Hej med dig.  Hvad så?\nIntet!Slut. v. 2.5 er   ny")
	want := []string{"Hej med dig.", "Hvad så?", "Intet!Slut.", "v.", "2.5 er ny"}
	assert.Equal(t, want, got)
	assert.Empty(t, splitSentences("  \n\t "))
}

func TestSentenceSplitterChunk(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine ten."

	got := SentenceSplitter{}.Chunk(text, 6, "Bog")
	assert.Equal(t, []string{
		"##Bog##One two three. Four five six.",
		"##Bog##Seven eight nine ten.",
	}, got)
}

func TestSentenceSplitterBlankTitleIsUntagged(t *testing.T) {
	for _, title := range []string{"", "   "} {
		got := SentenceSplitter{}.Chunk("Alpha beta.", 10, title)
		assert.Equal(t, []string{"Alpha beta."}, got, "title %q", title)
	}
}

func TestSentenceSplitterOversizedSentenceStandsAlone(t *testing.T) {
	got := SentenceSplitter{}.Chunk("a b c d e. f g.", 2, "")
	assert.Equal(t, []string{"a b c d e.", "f g."}, got)
}

func TestSentenceSplitterWordBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var sentences []string
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(25)
		words := make([]string, n)
		for j := range words {
			words[j] = fmt.Sprintf("w%d_%d", i, j)
		}
		sentences = append(sentences, strings.Join(words, " ")+".")
	}
	text := strings.Join(sentences, " ")

	for _, budget := range []int{5, 20, 60, 300} {
		chunks := SentenceSplitter{}.Chunk(text, budget, "")
		require.NotEmpty(t, chunks)

		over := 0
		for _, c := range chunks {
			if wordCount(c) > budget {
				over++
				assert.Len(t, splitSentences(c), 1, "oversized chunk must be a single sentence")
			}
		}
		if budget >= 25 {
			assert.Zero(t, over, "budget %d", budget)
		}
		// No sentence is split or lost.
		assert.Equal(t, text, strings.Join(chunks, " "), "budget %d", budget)
	}
}

func TestWordOverlapChunk(t *testing.T) {
	s := []string{
		"a1 a2 a3 a4.", "b1 b2 b3 b4.", "c1 c2 c3 c4.",
		"d1 d2 d3 d4.", "e1 e2 e3 e4.", "f1 f2 f3 f4.",
	}
	chunks := WordOverlap{}.Chunk(strings.Join(s, " "), 10, "Ignored")

	require.Len(t, chunks, 5)
	assert.Equal(t, s[0]+" "+s[1], chunks[0])
	assert.Equal(t, s[1]+" "+s[2], chunks[1])
	assert.Equal(t, s[4]+" "+s[5], chunks[4])
	for _, c := range chunks {
		assert.False(t, strings.HasPrefix(c, "##"))
	}
}

func TestWordOverlapConsecutiveChunksShareText(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var sentences []string
	for i := 0; i < 120; i++ {
		n := 3 + rng.Intn(12)
		words := make([]string, n)
		for j := range words {
			words[j] = fmt.Sprintf("s%dw%d", i, j)
		}
		sentences = append(sentences, strings.Join(words, " ")+".")
	}

	chunks := WordOverlap{}.Chunk(strings.Join(sentences, " "), 50, "")
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := splitSentences(chunks[i-1])
		next := splitSentences(chunks[i])
		assert.Contains(t, prev[1:], next[0], "chunk %d must open with the tail of chunk %d", i, i-1)
		assert.LessOrEqual(t, wordCount(chunks[i]), 50)
	}
}

func TestOverlapTail(t *testing.T) {
	s := []string{"a b c.", "d.", "e f."}
	assert.Equal(t, []string{"d.", "e f."}, overlapTail(s, 3, 100))
	assert.Equal(t, []string{"e f."}, overlapTail(s, 1, 100))
	// The first sentence is never carried.
	assert.Equal(t, []string{"d.", "e f."}, overlapTail(s, 100, 100))
	// A last sentence longer than half the chunk is not carried.
	assert.Nil(t, overlapTail(s, 1, 3))
	assert.Nil(t, overlapTail([]string{"x."}, 5, 10))
	assert.Nil(t, overlapTail(nil, 5, 10))
}

func sentenceOf(words, id int) string {
	w := make([]string, words)
	for j := range w {
		w[j] = fmt.Sprintf("s%dw%d", id, j)
	}
	return strings.Join(w, " ") + "."
}

func TestWordOverlapOversizedSentenceStandsAlone(t *testing.T) {
	long := sentenceOf(30, 0)
	text := long + " Kort sætning her. Endnu en kort. Og en til."

	chunks := WordOverlap{}.Chunk(text, 10, "")

	require.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0])
	assert.Equal(t, "Kort sætning her. Endnu en kort. Og en til.", chunks[1])
}

func TestWordOverlapLongSentencesAreNotRepeated(t *testing.T) {
	var sentences []string
	for i := 0; i < 6; i++ {
		sentences = append(sentences, sentenceOf(60, i))
	}

	chunks := WordOverlap{}.Chunk(strings.Join(sentences, " "), 100, "")

	assert.Equal(t, sentences, chunks)
}

func TestWordOverlapCarriedTailNeverOverflows(t *testing.T) {
	// 40 + 40 fits, the carried 40 plus the next 70 would not.
	text := sentenceOf(40, 0) + " " + sentenceOf(40, 1) + " " + sentenceOf(70, 2)

	chunks := WordOverlap{}.Chunk(text, 100, "")

	require.Len(t, chunks, 2)
	assert.Equal(t, sentenceOf(70, 2), chunks[1])
	for _, c := range chunks {
		assert.LessOrEqual(t, wordCount(c), 100)
	}
}

func TestStripTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"##Bog##tekst her", "tekst her"},
		{"##Bog##a ## b", "a ## b"},
		{"plain text", "plain text"},
		{"a ## b", "a ## b"},
		{"##unterminated", "##unterminated"},
		{"####", ""},
	}
	for _, tt := range tests {
		if got := StripTitle(tt.in); got != tt.want {
			t.Errorf("StripTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \n"))
	assert.True(t, IsBlank("##Titel##  "))
	assert.False(t, IsBlank("##Titel## x"))
}
