package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/models"
	"github.com/steentj/dho-sub001/internal/search"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResultGroup, error)
}

type SearchHandler struct {
	searcher Searcher
	logger   *zap.Logger
}

func NewSearchHandler(s Searcher, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{searcher: s, logger: logger}
}

type SearchRequest struct {
	Query string `json:"query"`
}

// Search serves POST {"query": ...} and GET ?query=. A blank query is a
// 400, every other failure degrades to an empty list.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if r.Method == http.MethodGet {
		req.Query = r.URL.Query().Get("query")
	} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	groups, err := h.searcher.Search(r.Context(), req.Query)
	if errors.Is(err, search.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		groups = nil
	}
	if groups == nil {
		groups = []models.SearchResultGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}
