package routes

import (
	"net/http"

	"github.com/medkb/billing-kb/internal/api/handlers"
	"github.com/medkb/billing-kb/internal/api/middleware"
	"github.com/medkb/billing-kb/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	queryHandler      *handlers.QueryHandler
	serviceHandler    *handlers.ServiceHandler
	reconcileHandler  *handlers.ReconcileHandler
	extractionHandler *handlers.ExtractionHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	queryHandler *handlers.QueryHandler,
	serviceHandler *handlers.ServiceHandler,
	reconcileHandler *handlers.ReconcileHandler,
	extractionHandler *handlers.ExtractionHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		queryHandler:      queryHandler,
		serviceHandler:    serviceHandler,
		reconcileHandler:  reconcileHandler,
		extractionHandler: extractionHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Retrieval endpoints
	if r.queryHandler != nil {
		r.mux.HandleFunc("POST /api/query", r.queryHandler.ProcessQuery)
		r.mux.HandleFunc("POST /api/query/multi", r.queryHandler.ProcessMultiQuery)
	}

	// Service catalog endpoints
	if r.serviceHandler != nil {
		r.mux.HandleFunc("GET /api/services", r.serviceHandler.ListServices)
		r.mux.HandleFunc("GET /api/services/search", r.serviceHandler.SearchServices)
		r.mux.HandleFunc("POST /api/services/compare", r.serviceHandler.CompareServices)
		r.mux.HandleFunc("GET /api/services/{code}", r.serviceHandler.GetService)
		r.mux.HandleFunc("GET /api/services/{code}/rules", r.serviceHandler.GetServiceRules)
	}

	// Reconciliation endpoint
	r.mux.HandleFunc("POST /api/chat/reconcile", r.reconcileHandler.Reconcile)

	// Extraction endpoint
	r.mux.HandleFunc("POST /api/extract", r.extractionHandler.Extract)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	// CORS wraps everything so headers are set on every response
	handler = middleware.CORSMiddleware(handler)

	return handler
}
