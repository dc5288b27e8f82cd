package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

var _ core.PageExtractor = (*PDFExtractor)(nil)

// PDFExtractor reads pages with the pure Go PDF reader and falls back to
// another extractor when that fails or yields no text.
type PDFExtractor struct {
	fallback core.PageExtractor
	logger   *zap.Logger
}

func NewPDFExtractor(fallback core.PageExtractor, logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{fallback: fallback, logger: logger}
}

func (e *PDFExtractor) ExtractPages(ctx context.Context, data []byte) (*models.ExtractedDocument, error) {
	doc, err := readPDF(data)
	if err == nil && hasText(doc.Pages) {
		return doc, nil
	}
	if e.fallback == nil {
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	e.logger.Debug("pdf reader gave no text, using fallback", zap.Error(err))
	fb, fbErr := e.fallback.ExtractPages(ctx, data)
	if fbErr != nil {
		if err != nil {
			return nil, fmt.Errorf("%v; fallback: %w", err, fbErr)
		}
		return doc, nil
	}
	if doc != nil {
		if fb.Title == "" {
			fb.Title = doc.Title
		}
		if fb.Author == "" {
			fb.Author = doc.Author
		}
	}
	return fb, nil
}

func readPDF(data []byte) (doc *models.ExtractedDocument, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	pages := make([]models.Page, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, models.Page{Number: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, models.Page{Number: i, Text: text})
	}

	info := r.Trailer().Key("Info")
	return &models.ExtractedDocument{
		Title:  strings.TrimSpace(info.Key("Title").Text()),
		Author: strings.TrimSpace(info.Key("Author").Text()),
		Pages:  pages,
	}, nil
}

func hasText(pages []models.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
