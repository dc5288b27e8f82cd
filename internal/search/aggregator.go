package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steentj/dho-sub001/internal/core/chunking"
	"github.com/steentj/dho-sub001/internal/models"
)

const (
	DefaultThreshold = 0.5
	segmentSeparator = "\n\n---\n\n"
	pageFragment     = "#page="
)

// Aggregator turns raw hits into one ranked group per book.
//
// Threshold: hits farther than this are dropped.
// PageTags:  prefix each text segment with "[Side N] ".
type Aggregator struct {
	Threshold float64
	PageTags  bool
}

type groupAcc struct {
	publicURL string
	title     string
	author    string
	hits      []models.SearchHit
	min       float64
}

// Aggregate filters hits by threshold, groups them by book and orders the
// groups by their best distance. There is no cap on the number of groups.
func (a Aggregator) Aggregate(hits []models.SearchHit) []models.SearchResultGroup {
	var (
		order  []string
		groups = make(map[string]*groupAcc)
	)
	for _, h := range hits {
		if h.Distance > a.Threshold {
			continue
		}
		key := PublicURL(h.BookURL)
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{publicURL: key, title: h.Title, author: h.Author, min: h.Distance}
			groups[key] = g
			order = append(order, key)
		}
		g.hits = append(g.hits, h)
		if h.Distance < g.min {
			g.min = h.Distance
		}
	}

	out := make([]models.SearchResultGroup, 0, len(order))
	for _, key := range order {
		out = append(out, a.build(groups[key]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

func (a Aggregator) build(g *groupAcc) models.SearchResultGroup {
	sort.SliceStable(g.hits, func(i, j int) bool { return g.hits[i].Distance < g.hits[j].Distance })

	segments := make([]string, 0, len(g.hits))
	seen := make(map[int]bool)
	pages := make([]int, 0, len(g.hits))
	for _, h := range g.hits {
		text := strings.TrimSpace(chunking.StripTitle(h.Chunk))
		if a.PageTags {
			text = fmt.Sprintf("[Side %d] %s", h.Page, text)
		}
		segments = append(segments, text)
		if !seen[h.Page] {
			seen[h.Page] = true
			pages = append(pages, h.Page)
		}
	}
	sort.Ints(pages)

	best := g.hits[0]
	return models.SearchResultGroup{
		PublicURL:   g.publicURL,
		InternalURL: InternalURL(g.publicURL, best.Page),
		Title:       g.title,
		Author:      g.author,
		Chunk:       strings.Join(segments, segmentSeparator),
		Distance:    g.min,
		Pages:       pages,
		ChunkCount:  len(g.hits),
	}
}

// PublicURL drops any fragment from a book identifier.
func PublicURL(bookURL string) string {
	if i := strings.IndexByte(bookURL, '#'); i >= 0 {
		return bookURL[:i]
	}
	return bookURL
}

// InternalURL points at a page of the book.
func InternalURL(bookURL string, page int) string {
	return fmt.Sprintf("%s%s%d", PublicURL(bookURL), pageFragment, page)
}
