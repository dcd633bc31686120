package routes

import (
	"net/http"

	"github.com/seniornav/careplan/backend/internal/api/handlers"
	"github.com/seniornav/careplan/backend/internal/api/middleware"
	"github.com/seniornav/careplan/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	assessmentHandler *handlers.AssessmentHandler
	streamHandler     *handlers.DecisionStreamHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	assessmentHandler *handlers.AssessmentHandler,
	streamHandler *handlers.DecisionStreamHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		assessmentHandler: assessmentHandler,
		streamHandler:     streamHandler,

		metrics: metrics,
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

	// Assessment endpoints
	r.mux.HandleFunc("POST /api/assessments", r.assessmentHandler.SubmitAssessment)
	r.mux.HandleFunc("GET /api/assessments/{id}/decision", r.assessmentHandler.GetDecision)

	// User decision history endpoints
	r.mux.HandleFunc("GET /api/users/{id}/decisions", r.assessmentHandler.ListUserDecisions)
	r.mux.HandleFunc("GET /api/users/{id}/snapshots", r.assessmentHandler.ListUserSnapshots)

	// Live decision stream (SSE)
	r.mux.HandleFunc("GET /api/users/{id}/stream", r.streamHandler.StreamUserDecisions)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflights never hit the handlers
	handler = middleware.CORSMiddleware(handler)

	return handler
}
