// Package api provides the JSON API for the MQ usage viewer.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/preedep/MQUsageViewer/adapters/auth"
	"github.com/preedep/MQUsageViewer/adapters/metrics"
	"github.com/preedep/MQUsageViewer/app"
)

// Handler provides the API endpoints.
type Handler struct {
	tokens    *auth.TokenService
	reference *app.ReferenceService
	search    *app.SearchService
	metrics   *metrics.Collector
	logger    zerolog.Logger
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Tokens    *auth.TokenService
	Reference *app.ReferenceService
	Search    *app.SearchService
	Metrics   *metrics.Collector
	Logger    zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		tokens:    deps.Tokens,
		reference: deps.Reference,
		search:    deps.Search,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Router returns the API router. Login is the only route outside the
// bearer gate.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/mq/functions", h.ListFunctions)
			r.Get("/mq/{function}/systems", h.ListSystems)
			r.Post("/mq/search", h.Search)
			r.Post("/mq/tps/summary", h.Summary)
			r.Post("/mq/tps/all_summary", h.AllSummary)
		})
	})

	r.Get("/healthz", h.Health)

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "OK", nil)
}

// instrument logs each request with a generated ID and records metrics.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		h.metrics.RequestsInFlight.Inc()
		defer h.metrics.RequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		status := strconv.Itoa(ww.Status())

		h.metrics.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())

		h.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// -----------------------------------------------------------------------------
// Response envelope
// -----------------------------------------------------------------------------

// Response is the envelope for every JSON body this API returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeEnvelope(w, status, Response{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Response{Success: false, Message: message, Data: nil})
}

func writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
