package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/steentj/dho-sub001/internal/core"
	objectclient "github.com/steentj/dho-sub001/internal/core/object-client"
)

// maxDocumentBytes caps a single download.
const maxDocumentBytes = 256 << 20

var _ core.Fetcher = (*SourceFetcher)(nil)

// FetchError reports a non-2xx HTTP response.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// SourceFetcher downloads PDFs from http(s), s3:// or the local filesystem.
type SourceFetcher struct {
	client  *http.Client
	objects core.ObjectClient
}

// NewSourceFetcher builds a fetcher. objects may be nil when no bucket is
// configured; s3:// sources then fail.
func NewSourceFetcher(timeout time.Duration, objects core.ObjectClient) *SourceFetcher {
	return &SourceFetcher{
		client:  &http.Client{Timeout: timeout},
		objects: objects,
	}
}

func (f *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse source %q: %w", source, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, source)
	case "s3":
		if f.objects == nil {
			return nil, errors.New("s3 source given but no object storage configured")
		}
		bucket, key, err := objectclient.ParseS3URL(source)
		if err != nil {
			return nil, err
		}
		return f.objects.GetFile(ctx, bucket, key)
	case "file":
		return os.ReadFile(u.Path)
	case "":
		return os.ReadFile(source)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: source, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("fetch %s: document exceeds %d bytes", source, maxDocumentBytes)
	}
	return data, nil
}
