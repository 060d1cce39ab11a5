package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"TubeFM/config"
	"TubeFM/core/search"
	"TubeFM/logger"
	"TubeFM/model"
)

// APIHandler serves the non-streaming API endpoints.
type APIHandler struct {
	search search.Searcher
	cfg    *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(searcher search.Searcher, cfg *config.Config) *APIHandler {
	return &APIHandler{
		search: searcher,
		cfg:    cfg,
	}
}

// HealthHandler answers the liveness probe.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true})
}

// SearchHandler resolves a free-text query into candidate media items.
// An empty query is rejected before the provider is contacted.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter q")
		return
	}

	items, err := h.search.Search(r.Context(), query, h.cfg.SearchLimit)
	if err != nil {
		logger.Error("search provider failed",
			logger.String("query", query),
			logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Search failed")
		return
	}

	if items == nil {
		items = []model.SearchResultItem{}
	}
	writeJSON(w, http.StatusOK, model.SearchResponse{Items: items})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: message})
}
