package ingestion_engine

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/steentj/dho-sub001/internal/models"
)

var (
	softHyphenBreak = regexp.MustCompile(`\x{00AD}[ \t]*\r?\n[ \t]*`)
	hyphenLineBreak = regexp.MustCompile(`-[ \t]*\r?\n[ \t]*`)
)

// CleanText removes OCR line-wrap artifacts: a soft hyphen before a line
// break, and a hard hyphen breaking a word across lines.
func CleanText(s string) string {
	s = softHyphenBreak.ReplaceAllString(s, "")

	matches := hyphenLineBreak.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}
	var (
		b    strings.Builder
		last int
	)
	b.Grow(len(s))
	for _, m := range matches {
		before, _ := utf8.DecodeLastRuneInString(s[:m[0]])
		after, _ := utf8.DecodeRuneInString(s[m[1]:])
		if unicode.IsLetter(before) && unicode.IsLetter(after) {
			b.WriteString(s[last:m[0]])
			last = m[1]
		}
	}
	b.WriteString(s[last:])
	return b.String()
}

// CleanPages applies CleanText to every page.
func CleanPages(pages []models.Page) []models.Page {
	out := make([]models.Page, len(pages))
	for i, p := range pages {
		out[i] = models.Page{Number: p.Number, Text: CleanText(p.Text)}
	}
	return out
}
