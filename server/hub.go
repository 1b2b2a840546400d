package server

import (
	"log/slog"
	"sync"

	"github.com/onnwee/quizbot/bot"
	"github.com/onnwee/quizbot/telemetry"
)

// Hub fans feature notifications out to the SSE clients watching a
// (channel, feature) pair. It satisfies bot.NotificationSink.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan bot.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan bot.Notification]struct{})}
}

func key(channel, featureID string) string { return channel + "/" + featureID }

// Subscribe registers a client for (channel, featureID). The returned
// cancel function must be called when the client goes away.
func (h *Hub) Subscribe(channel, featureID string) (<-chan bot.Notification, func()) {
	ch := make(chan bot.Notification, 16)
	k := key(channel, featureID)

	h.mu.Lock()
	if h.subs[k] == nil {
		h.subs[k] = make(map[chan bot.Notification]struct{})
	}
	h.subs[k][ch] = struct{}{}
	h.mu.Unlock()
	telemetry.AddSSEClient()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[k]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, k)
			}
		}
		h.mu.Unlock()
		telemetry.RemoveSSEClient()
	}
	return ch, cancel
}

// Publish delivers n to every client watching (channel, featureID). A slow
// client's full buffer drops the notification rather than blocking the
// chat path.
func (h *Hub) Publish(channel, featureID string, n bot.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[key(channel, featureID)] {
		select {
		case ch <- n:
		default:
			slog.Warn("dropping notification for slow client", slog.String("channel", channel), slog.String("feature", featureID))
		}
	}
}
