package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

var _ core.PageExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor extracts PDF text through docconv (pdftotext). Pages are
// separated by form feeds in the converted body.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

func (e *DocconvExtractor) ExtractPages(ctx context.Context, data []byte) (*models.ExtractedDocument, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &models.ExtractedDocument{
		Title:  strings.TrimSpace(res.Meta["Title"]),
		Author: strings.TrimSpace(res.Meta["Author"]),
		Pages:  splitFormFeeds(res.Body),
	}
	return doc, nil
}

func splitFormFeeds(body string) []models.Page {
	parts := strings.Split(body, "\f")
	// pdftotext terminates the last page with a form feed too
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]models.Page, len(parts))
	for i, p := range parts {
		pages[i] = models.Page{Number: i + 1, Text: p}
	}
	return pages
}
