package models

import "time"

// Book is identified by its source URL. Title, author and page count are
// fixed when the row is first created.
type Book struct {
	ID        int64     `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	PageCount int       `db:"page_count" json:"page_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Source is one entry of an ingestion run.
type Source struct {
	URL    string `yaml:"url" json:"url"`
	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
	Author string `yaml:"author,omitempty" json:"author,omitempty"`
}

// Page is the raw text of one 1-based PDF page.
type Page struct {
	Number int
	Text   string
}

// ExtractedDocument is what a PageExtractor hands back for one PDF.
type ExtractedDocument struct {
	Title  string
	Author string
	Pages  []Page
}

// PageChunk is a chunk tagged with the page it starts on.
type PageChunk struct {
	Page int
	Text string
}

type Chunk struct {
	BookID    int64     `db:"book_id" json:"book_id"`
	Page      int       `db:"page" json:"page"`
	Ordinal   int       `db:"ordinal" json:"ordinal"`
	Text      string    `db:"chunk" json:"chunk"`
	Embedding []float32 `db:"embedding" json:"-"`
	Provider  string    `db:"provider" json:"provider"`
}

// SearchHit is one nearest-neighbour row.
type SearchHit struct {
	BookURL  string  `json:"book_url"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Page     int     `json:"page"`
	Chunk    string  `json:"chunk"`
	Distance float64 `json:"distance"`
}

// SearchResultGroup aggregates all hits of one book.
type SearchResultGroup struct {
	PublicURL   string  `json:"public_url"`
	InternalURL string  `json:"internal_url"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Chunk       string  `json:"chunk"`
	Distance    float64 `json:"distance"`
	Pages       []int   `json:"pages"`
	ChunkCount  int     `json:"chunk_count"`
}
