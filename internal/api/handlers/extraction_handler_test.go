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
	"github.com/medkb/billing-kb/internal/domain/entities"
)

func TestExtractionHandler_Extract(t *testing.T) {
	handler := handlers.NewExtractionHandler()

	body := `{"pages":[{"page_number":1,"text":"CONSULTATIONS AND VISITS\nA001 Minor assessment 23.75"}]}`
	req := httptest.NewRequest("POST", "/api/extract", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Extract(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result entities.ExtractionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.Len(t, result.Services, 1)
	assert.Equal(t, "A001", result.Services[0].Code)
	assert.Equal(t, "CONSULTATIONS AND VISITS", result.Services[0].Section)
	assert.Equal(t, 1, result.Summary.PagesProcessed)
}

func TestExtractionHandler_NoPages(t *testing.T) {
	handler := handlers.NewExtractionHandler()

	req := httptest.NewRequest("POST", "/api/extract", strings.NewReader(`{"pages":[]}`))
	w := httptest.NewRecorder()

	handler.Extract(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractionHandler_InvalidBody(t *testing.T) {
	handler := handlers.NewExtractionHandler()

	req := httptest.NewRequest("POST", "/api/extract", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	handler.Extract(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
