package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/repositories"
)

const defaultListLimit = 50

// ServiceHandler handles service catalog HTTP requests
type ServiceHandler struct {
	catalog *services.CatalogService
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// GetService handles GET /api/services/{code}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "service code is required")
		return
	}

	service, err := h.catalog.GetByCode(r.Context(), code)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, service)
}

// ListServices handles GET /api/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ServiceFilter{
		Category: r.URL.Query().Get("category"),
		Section:  r.URL.Query().Get("section"),
		Limit:    defaultListLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	items, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": items,
		"count":    len(items),
	})
}

// SearchServices handles GET /api/services/search
func (h *ServiceHandler) SearchServices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	items, err := h.catalog.Search(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": items,
		"count":    len(items),
	})
}

type compareRequest struct {
	Codes []string `json:"codes"`
}

// CompareServices handles POST /api/services/compare
func (h *ServiceHandler) CompareServices(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comparison, err := h.catalog.Compare(r.Context(), req.Codes)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, comparison)
}

// GetServiceRules handles GET /api/services/{code}/rules
func (h *ServiceHandler) GetServiceRules(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "service code is required")
		return
	}

	rules, err := h.catalog.RulesFor(r.Context(), code)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}
