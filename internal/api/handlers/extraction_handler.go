package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/extraction"
)

// ExtractionHandler handles document extraction HTTP requests
type ExtractionHandler struct{}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler() *ExtractionHandler {
	return &ExtractionHandler{}
}

type extractionRequest struct {
	Pages []entities.Page `json:"pages"`
}

// Extract handles POST /api/extract. The extractor carries a section cursor
// across pages, so each request gets a fresh one.
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Pages) == 0 {
		respondWithError(w, http.StatusBadRequest, "at least one page is required")
		return
	}

	result := extraction.NewExtractor().Extract(req.Pages)
	respondWithJSON(w, http.StatusOK, result)
}
