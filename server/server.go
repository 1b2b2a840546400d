// Package server exposes the HTTP surface: health and readiness probes,
// Prometheus metrics, and the SSE events endpoint the companion UI consumes.
// It injects correlation IDs into request contexts for consistent logging.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/quizbot/bot"
	"github.com/onnwee/quizbot/telemetry"
)

// NewMux returns the HTTP handler with all routes.
func NewMux(db *sql.DB, catalog *bot.Catalog, hub *Hub, uiOrigin string) http.Handler {
	handlers := NewHandlers(db, catalog, hub)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handlers.HandleHealthz)
	mux.HandleFunc("/readyz", handlers.HandleReadyz)
	mux.HandleFunc("/events", handlers.HandleEvents)

	// Wrap with CORS for the UI origin, correlation ID injection, and tracing.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", uiOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Reuse corr header if provided else generate.
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)

		ctx, span := telemetry.StartSpan(ctx, "http-server", r.Method+" "+r.URL.Path)
		defer span.End()

		telemetry.LoggerWithCorr(ctx).Debug("request start", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("component", "http"))
		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}
