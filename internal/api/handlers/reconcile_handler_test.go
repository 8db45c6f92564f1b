package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/billing-kb/internal/api/handlers"
	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/entities"
)

func TestReconcileHandler_CompleteBill(t *testing.T) {
	handler := handlers.NewReconcileHandler(services.NewReconciliationService())

	reply := `{"patientName":"Jane Doe","ohip":"1234567890","serviceDate":"2025-03-14","services":[{"serviceCode":"A001","serviceName":"Minor assessment","unitPrice":23.75}]}`
	body, err := json.Marshal(map[string]string{"reply": reply})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/chat/reconcile", strings.NewReader(string(body)))
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result entities.ReconcileResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Empty(t, result.MissingFields)
	assert.Contains(t, result.Reply, "Billing summary:")
	assert.Equal(t, "Jane Doe", result.BillInfo[entities.BillFieldPatientName])
}

func TestReconcileHandler_MissingFieldsReported(t *testing.T) {
	handler := handlers.NewReconcileHandler(services.NewReconciliationService())

	body := `{"reply": "{\"patientName\":\"Jane Doe\"}"}`
	req := httptest.NewRequest("POST", "/api/chat/reconcile", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result entities.ReconcileResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, []string{"ohipNumber", "serviceDate"}, result.MissingFields)
}

func TestReconcileHandler_EmptyReplyRejected(t *testing.T) {
	handler := handlers.NewReconcileHandler(services.NewReconciliationService())

	req := httptest.NewRequest("POST", "/api/chat/reconcile", strings.NewReader(`{"reply": ""}`))
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileHandler_InvalidBody(t *testing.T) {
	handler := handlers.NewReconcileHandler(services.NewReconciliationService())

	req := httptest.NewRequest("POST", "/api/chat/reconcile", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
