package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/infrastructure/observability"
)

// QueryHandler handles semantic retrieval HTTP requests
type QueryHandler struct {
	retrieval *services.RetrievalService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(retrieval *services.RetrievalService) *QueryHandler {
	return &QueryHandler{retrieval: retrieval}
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// ProcessQuery handles POST /api/query
func (h *QueryHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.retrieval.ProcessQuery(r.Context(), req.Query, req.TopK)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("query", req.Query).Msg("query failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ProcessMultiQuery handles POST /api/query/multi
func (h *QueryHandler) ProcessMultiQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.retrieval.ProcessMultiQuery(r.Context(), req.Query)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("query", req.Query).Msg("multi query failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
