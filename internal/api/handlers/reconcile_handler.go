package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medkb/billing-kb/internal/application/services"
)

// ReconcileHandler handles bill reconciliation HTTP requests
type ReconcileHandler struct {
	reconciliation *services.ReconciliationService
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(reconciliation *services.ReconciliationService) *ReconcileHandler {
	return &ReconcileHandler{reconciliation: reconciliation}
}

type reconcileRequest struct {
	Reply string `json:"reply"`
}

// Reconcile handles POST /api/chat/reconcile
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reply == "" {
		respondWithError(w, http.StatusBadRequest, "reply is required")
		return
	}

	respondWithJSON(w, http.StatusOK, h.reconciliation.Reconcile(req.Reply))
}
