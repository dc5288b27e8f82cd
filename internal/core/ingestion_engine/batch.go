package ingestion_engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/steentj/dho-sub001/internal/models"
)

// Run processes sources with at most Concurrency books in flight. A
// failing book is recorded and its siblings keep going.
func (i *BookIngestor) Run(ctx context.Context, sources []models.Source) BatchResult {
	return i.runBatch(ctx, "ingest", len(sources), func(ctx context.Context, n int) BookResult {
		return i.ProcessBook(ctx, sources[n])
	})
}

func (i *BookIngestor) runBatch(ctx context.Context, kind string, total int, process func(context.Context, int) BookResult) BatchResult {
	runID := uuid.NewString()
	start := time.Now()
	log := i.logger.With(zap.String("run_id", runID), zap.String("kind", kind))
	log.Info("batch started",
		zap.Int("books", total),
		zap.Int("concurrency", i.cfg.Concurrency),
		zap.String("provider", i.embedder.Name()),
	)

	results := make([]BookResult, total)
	var g errgroup.Group
	g.SetLimit(i.cfg.Concurrency)
	for n := 0; n < total; n++ {
		g.Go(func() error {
			results[n] = process(ctx, n)
			return nil
		})
	}
	_ = g.Wait()

	br := summarize(runID, results, time.Since(start))
	log.Info("batch finished",
		zap.Int("done", br.Done),
		zap.Int("skipped", br.Skipped),
		zap.Int("failed", br.Failed),
		zap.Duration("elapsed", br.Duration),
	)
	return br
}
