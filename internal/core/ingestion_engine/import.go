package ingestion_engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/core/chunking"
	"github.com/steentj/dho-sub001/internal/models"
)

// ImportRecord is one line of a pre-chunked JSONL export. Chunk text is
// decoded loosely since older exports wrote lists or numbers there.
type ImportRecord struct {
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	PageCount int           `json:"page_count"`
	Chunks    []ImportChunk `json:"chunks"`
}

type ImportChunk struct {
	Page int `json:"page"`
	Text any `json:"text"`
}

const maxImportLine = 64 << 20

// ReadImportFile decodes a JSONL stream of ImportRecords. Blank lines are
// ignored.
func ReadImportFile(r io.Reader) ([]ImportRecord, error) {
	var out []ImportRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), maxImportLine)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		rec, err := decodeImportLine(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.URL == "" {
			return nil, fmt.Errorf("line %d: url is empty", line)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return out, nil
}

// decodeImportLine keeps numeric chunk text as json.Number so large
// integers survive coercion unchanged.
func decodeImportLine(raw []byte) (ImportRecord, error) {
	var rec ImportRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return rec, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return rec, errors.New("unexpected data after record")
	}
	return rec, nil
}

// Import embeds and stores pre-chunked books with the same bounded
// concurrency and dedup rules as Run.
func (i *BookIngestor) Import(ctx context.Context, records []ImportRecord) BatchResult {
	return i.runBatch(ctx, "import", len(records), func(ctx context.Context, n int) BookResult {
		return i.ImportBook(ctx, records[n])
	})
}

func (i *BookIngestor) ImportBook(ctx context.Context, rec ImportRecord) (res BookResult) {
	start := time.Now()
	log := i.logger.With(zap.String("url", rec.URL), zap.String("provider", i.embedder.Name()))
	res = BookResult{URL: rec.URL}

	defer func() {
		if r := recover(); r != nil {
			res = failed(res, "panic", fmt.Errorf("%v", r))
			log.Error("book import panicked", zap.Any("panic", r))
		}
		res.Duration = time.Since(start)
	}()

	has, err := i.embedder.HasEmbeddingsForBook(ctx, i.store, rec.URL)
	if err != nil {
		return failed(res, "dedup check", err)
	}
	if has {
		log.Info("book already embedded for provider, skipping")
		return skipped(res, "already embedded")
	}

	pages, texts, maxPage := i.coerceChunks(log, rec)
	if len(texts) == 0 {
		return failed(res, "chunk", ErrNoText)
	}

	vecs, err := i.embedAll(ctx, texts)
	if err != nil {
		log.Error("embedding failed", zap.Error(err))
		return failed(res, "embed", err)
	}

	chunks := make([]models.Chunk, len(texts))
	for n := range texts {
		chunks[n] = models.Chunk{
			Page:      pages[n],
			Ordinal:   n,
			Text:      texts[n],
			Embedding: vecs[n],
			Provider:  i.embedder.Name(),
		}
	}

	pageCount := rec.PageCount
	if pageCount <= 0 {
		pageCount = maxPage
	}
	book := &models.Book{
		URL:       rec.URL,
		Title:     firstNonEmpty(rec.Title, titleFromURL(rec.URL)),
		Author:    rec.Author,
		PageCount: pageCount,
	}
	return i.persist(ctx, log, res, book, chunks)
}

// coerceChunks turns every chunk text into a string, drops blank ones and
// clamps pages into the book's range. It also returns the highest page
// kept, which stands in for a missing page count.
func (i *BookIngestor) coerceChunks(log *zap.Logger, rec ImportRecord) ([]int, []string, int) {
	pages := make([]int, 0, len(rec.Chunks))
	texts := make([]string, 0, len(rec.Chunks))
	maxPage := 0
	for n, c := range rec.Chunks {
		text, coerced := CoerceText(c.Text)
		if coerced {
			log.Warn("chunk text was not a string, coerced",
				zap.Int("chunk", n),
				zap.String("type", fmt.Sprintf("%T", c.Text)),
			)
		}
		if chunking.IsBlank(text) {
			continue
		}
		page := c.Page
		if page < 1 {
			page = 1
		}
		if rec.PageCount > 0 && page > rec.PageCount {
			page = rec.PageCount
		}
		maxPage = max(maxPage, page)
		pages = append(pages, page)
		texts = append(texts, text)
	}
	return pages, texts, maxPage
}
