package ingestion_engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/models"
)

// Queue feeds sources to a pool of background workers.
type Queue struct {
	ingestor Ingestor
	jobs     chan models.Source
	logger   *zap.Logger
}

// NewQueue constructs a queue with a bounded backlog of size entries.
func NewQueue(ingestor Ingestor, size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{ingestor: ingestor, jobs: make(chan models.Source, size), logger: logger}
}

// Start runs numWorkers goroutines reading from the queue until ctx ends.
func (q *Queue) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					q.logger.Debug("ingest worker shutting down", zap.Int("worker", w))
					return
				case src := <-q.jobs:
					res := q.ingestor.ProcessBook(ctx, src)
					q.logger.Info("queued book processed",
						zap.Int("worker", w),
						zap.String("url", src.URL),
						zap.String("outcome", string(res.Outcome)),
						zap.String("reason", res.Reason),
					)
				}
			}
		}(w)
	}
}

// Enqueue schedules a source. It reports false when the backlog is full.
func (q *Queue) Enqueue(src models.Source) bool {
	select {
	case q.jobs <- src:
		return true
	default:
		return false
	}
}

// Pending is the number of sources waiting for a worker.
func (q *Queue) Pending() int {
	return len(q.jobs)
}
