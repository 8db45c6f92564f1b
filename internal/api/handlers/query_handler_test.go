package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/billing-kb/internal/api/handlers"
	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/providers"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1}, nil
}

type stubIndex struct {
	matches []providers.Match
	err     error
}

func (s *stubIndex) EnsureCollection(ctx context.Context) error { return nil }

func (s *stubIndex) Upsert(ctx context.Context, records []providers.VectorRecord) error { return nil }

func (s *stubIndex) Search(ctx context.Context, vector []float32, topK int, filter *providers.SearchFilter) ([]providers.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func TestQueryHandler_ProcessQuery(t *testing.T) {
	index := &stubIndex{matches: []providers.Match{{
		ID:    "service_A003_deadbeef",
		Score: 0.9,
		Payload: map[string]any{
			"type":     providers.RecordKindService,
			"code":     "A003",
			"name":     "General assessment",
			"fee":      77.2,
			"category": "Assessment",
		},
	}}}
	retrieval := services.NewRetrievalService(&stubEmbedder{}, index, nil)
	handler := handlers.NewQueryHandler(retrieval)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"query":"general assessment"}`))
	w := httptest.NewRecorder()

	handler.ProcessQuery(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result entities.QueryResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Contains(t, result.Context, "General assessment")
	require.Len(t, result.Services, 1)
	assert.Equal(t, "A003", result.Services[0].Code)
}

func TestQueryHandler_EmptyQuery(t *testing.T) {
	retrieval := services.NewRetrievalService(&stubEmbedder{}, &stubIndex{}, nil)
	handler := handlers.NewQueryHandler(retrieval)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"query":""}`))
	w := httptest.NewRecorder()

	handler.ProcessQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryHandler_IndexDownMapsToServiceUnavailable(t *testing.T) {
	index := &stubIndex{err: errors.New("connection refused")}
	retrieval := services.NewRetrievalService(&stubEmbedder{}, index, nil)
	handler := handlers.NewQueryHandler(retrieval)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"query":"general assessment"}`))
	w := httptest.NewRecorder()

	handler.ProcessQuery(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueryHandler_ProcessMultiQuery(t *testing.T) {
	index := &stubIndex{matches: []providers.Match{{
		ID:    "service_A003_deadbeef",
		Score: 0.9,
		Payload: map[string]any{
			"type":     providers.RecordKindService,
			"code":     "A003",
			"name":     "General assessment",
			"fee":      77.2,
			"category": "Assessment",
		},
	}}}
	retrieval := services.NewRetrievalService(&stubEmbedder{}, index, nil)
	handler := handlers.NewQueryHandler(retrieval)

	req := httptest.NewRequest("POST", "/api/query/multi", strings.NewReader(`{"query":"general assessment and chest x-ray"}`))
	w := httptest.NewRecorder()

	handler.ProcessMultiQuery(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result entities.MultiQueryResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 2, result.QueriesProcessed)
	// both sub-queries hit the same record; the duplicate is dropped
	assert.Equal(t, 1, result.TotalFound)
}
