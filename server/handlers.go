package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/quizbot/bot"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db      *sql.DB
	catalog *bot.Catalog
	hub     *Hub
}

func NewHandlers(db *sql.DB, catalog *bot.Catalog, hub *Hub) *Handlers {
	return &Handlers{db: db, catalog: catalog, hub: hub}
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz reports ready only when the database answers a ping.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// HandleEvents streams feature notifications for one (channel, feature)
// pair over Server-Sent Events. On connect the client receives the
// feature's current-state snapshot, then every pushed notification until it
// disconnects.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	channel := r.URL.Query().Get("channel")
	featureID := r.URL.Query().Get("feature")
	if channel == "" || featureID == "" {
		http.Error(w, "channel and feature query params are required", http.StatusBadRequest)
		return
	}
	feature, ok := h.catalog.Get(featureID)
	if !ok {
		http.Error(w, "unknown feature", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	notifications, cancel := h.hub.Subscribe(channel, featureID)
	defer cancel()

	// Catch-up snapshot first, so a client connecting mid-round sees the
	// current question immediately.
	if err := writeEvent(w, feature.InitialNotification(channel)); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notifications:
			if err := writeEvent(w, n); err != nil {
				slog.Debug("sse client write failed", slog.Any("err", err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, n bot.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
