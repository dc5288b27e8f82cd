package ingestion_engine

import (
	"context"
	"time"

	"github.com/steentj/dho-sub001/internal/models"
)

// Ingestor processes books one at a time or as a bounded batch.
type Ingestor interface {
	ProcessBook(ctx context.Context, src models.Source) BookResult
	Run(ctx context.Context, sources []models.Source) BatchResult
}

var _ Ingestor = (*BookIngestor)(nil)

// Outcome is the terminal state of one book.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type BookResult struct {
	URL      string        `json:"url"`
	Outcome  Outcome       `json:"outcome"`
	Chunks   int           `json:"chunks"`
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// BatchResult summarises a run. Failures never stop sibling books.
type BatchResult struct {
	RunID    string        `json:"run_id"`
	Total    int           `json:"total"`
	Done     int           `json:"done"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Results  []BookResult  `json:"results"`
	Duration time.Duration `json:"duration"`
}

func summarize(runID string, results []BookResult, elapsed time.Duration) BatchResult {
	br := BatchResult{RunID: runID, Total: len(results), Results: results, Duration: elapsed}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeDone:
			br.Done++
		case OutcomeSkipped:
			br.Skipped++
		default:
			br.Failed++
		}
	}
	return br
}
