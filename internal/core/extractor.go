package core

import (
	"context"

	"github.com/steentj/dho-sub001/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks github.com/steentj/dho-sub001/internal/core PageExtractor,Fetcher

// PageExtractor returns the raw text of every page of a PDF.
type PageExtractor interface {
	ExtractPages(ctx context.Context, data []byte) (*models.ExtractedDocument, error)
}

// Fetcher retrieves the bytes behind a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}
