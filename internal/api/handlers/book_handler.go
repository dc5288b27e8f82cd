package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

type BookCatalog interface {
	Books(ctx context.Context) ([]models.Book, error)
	Book(ctx context.Context, bookURL string) (*models.Book, error)
}

type Enqueuer interface {
	Enqueue(src models.Source) bool
}

type BookHandler struct {
	catalog BookCatalog
	queue   Enqueuer
	logger  *zap.Logger
}

// NewBookHandler wires the catalog endpoints. queue may be nil, in which
// case ingestion requests are refused.
func NewBookHandler(catalog BookCatalog, queue Enqueuer, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{catalog: catalog, queue: queue, logger: logger}
}

func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.Books(r.Context())
	if err != nil {
		h.logger.Error("list books failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GetBook looks a book up by its source URL (?url=).
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if bookURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	book, err := h.catalog.Book(r.Context(), bookURL)
	if errors.Is(err, core.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("find book failed", zap.String("url", bookURL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not look up book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Ingest queues one source for background ingestion.
func (h *BookHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion is not enabled")
		return
	}

	var src models.Source
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	src.URL = strings.TrimSpace(src.URL)
	if !remoteSource(src.URL) {
		writeError(w, http.StatusBadRequest, "url must be http(s) or s3")
		return
	}

	if !h.queue.Enqueue(src) {
		writeError(w, http.StatusServiceUnavailable, "ingestion queue is full")
		return
	}
	h.logger.Info("book queued", zap.String("url", src.URL))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "url": src.URL})
}

// remoteSource keeps HTTP callers away from the local filesystem.
func remoteSource(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "s3":
		return true
	}
	return false
}
