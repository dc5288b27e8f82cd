package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/core/chunking"
	"github.com/steentj/dho-sub001/internal/models"
)

// ErrNoText is returned when a book yields no chunk with content.
var ErrNoText = errors.New("no text extracted")

// ProcessBook runs one book through the pipeline. It never returns an
// error: the outcome and reason are reported in the result.
func (i *BookIngestor) ProcessBook(ctx context.Context, src models.Source) (res BookResult) {
	start := time.Now()
	log := i.logger.With(zap.String("url", src.URL), zap.String("provider", i.embedder.Name()))
	res = BookResult{URL: src.URL}

	defer func() {
		if r := recover(); r != nil {
			res = failed(res, "panic", fmt.Errorf("%v", r))
			log.Error("book ingestion panicked", zap.Any("panic", r))
		}
		res.Duration = time.Since(start)
	}()

	has, err := i.embedder.HasEmbeddingsForBook(ctx, i.store, src.URL)
	if err != nil {
		log.Error("dedup check failed", zap.Error(err))
		return failed(res, "dedup check", err)
	}
	if has {
		log.Info("book already embedded for provider, skipping")
		return skipped(res, "already embedded")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, i.cfg.FetchTimeout)
	data, err := i.fetcher.Fetch(fetchCtx, src.URL)
	cancel()
	if err != nil {
		log.Warn("fetch failed, skipping book", zap.Error(err))
		return skipped(res, fmt.Sprintf("fetch: %v", err))
	}

	doc, err := i.extractor.ExtractPages(ctx, data)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		return failed(res, "extract", err)
	}

	book, err := i.describeBook(ctx, src, doc)
	if err != nil {
		log.Error("book lookup failed", zap.Error(err))
		return failed(res, "book lookup", err)
	}

	pageChunks := chunking.Assemble(CleanPages(doc.Pages), i.cfg.ChunkSize, i.strategy, book.Title)
	if len(pageChunks) == 0 {
		log.Warn("no chunks produced")
		return failed(res, "chunk", ErrNoText)
	}

	vecs, err := i.embedAll(ctx, chunkTexts(pageChunks))
	if err != nil {
		log.Error("embedding failed", zap.Error(err))
		return failed(res, "embed", err)
	}

	chunks := make([]models.Chunk, len(pageChunks))
	for n, pc := range pageChunks {
		chunks[n] = models.Chunk{
			Page:      pc.Page,
			Ordinal:   n,
			Text:      pc.Text,
			Embedding: vecs[n],
			Provider:  i.embedder.Name(),
		}
	}

	return i.persist(ctx, log, res, book, chunks)
}

// describeBook keeps title and author of an existing row so chunk tags
// stay consistent across providers.
func (i *BookIngestor) describeBook(ctx context.Context, src models.Source, doc *models.ExtractedDocument) (*models.Book, error) {
	existing, err := i.store.FindBook(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return &models.Book{
		URL:       src.URL,
		Title:     firstNonEmpty(src.Title, doc.Title, titleFromURL(src.URL)),
		Author:    firstNonEmpty(src.Author, doc.Author),
		PageCount: len(doc.Pages),
	}, nil
}

func (i *BookIngestor) persist(ctx context.Context, log *zap.Logger, res BookResult, book *models.Book, chunks []models.Chunk) BookResult {
	stored, err := i.store.SaveBook(ctx, book, i.embedder.TableName(), chunks)
	if errors.Is(err, core.ErrAlreadyEmbedded) {
		log.Info("another run embedded this book first, skipping")
		return skipped(res, "already embedded")
	}
	if err != nil {
		log.Error("persist failed", zap.Error(err))
		return failed(res, "persist", err)
	}

	log.Info("book ingested", zap.Int64("book_id", stored.ID), zap.Int("chunks", len(chunks)))
	res.Outcome = OutcomeDone
	res.Chunks = len(chunks)
	return res
}

// embedAll embeds texts with at most EmbedConcurrency calls in flight.
// Results keep input order.
func (i *BookIngestor) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.cfg.EmbedConcurrency)
	for n, text := range texts {
		g.Go(func() error {
			v, err := i.embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", n, err)
			}
			if len(v) == 0 {
				return fmt.Errorf("chunk %d: empty embedding", n)
			}
			vecs[n] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}

func chunkTexts(chunks []models.PageChunk) []string {
	out := make([]string, len(chunks))
	for n, c := range chunks {
		out[n] = c.Text
	}
	return out
}

func failed(res BookResult, stage string, err error) BookResult {
	res.Outcome = OutcomeFailed
	res.Reason = fmt.Sprintf("%s: %v", stage, err)
	res.Err = err
	return res
}

func skipped(res BookResult, reason string) BookResult {
	res.Outcome = OutcomeSkipped
	res.Reason = reason
	return res
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// titleFromURL derives a title from the file name, e.g. ".../Den_Store_Bog.pdf"
// gives "Den Store Bog".
func titleFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}
