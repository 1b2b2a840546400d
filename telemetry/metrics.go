// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsRouted  prometheus.Counter
	QuizzesStarted  prometheus.Counter
	QuizzesStopped  prometheus.Counter
	QuizzesGuessed  prometheus.Counter
	WrongAnswers    prometheus.Counter
	StoreWriteFails prometheus.Counter

	// Gauges
	SubscriptionsGauge prometheus.Gauge
	SSEClientsGauge    prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsRouted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_routed_total", Help: "Number of chat commands routed"})
		QuizzesStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_quizzes_started_total", Help: "Number of quizzes started"})
		QuizzesStopped = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_quizzes_stopped_total", Help: "Number of quizzes stopped without a winner"})
		QuizzesGuessed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_quizzes_guessed_total", Help: "Number of quizzes ended by a correct answer"})
		WrongAnswers = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_wrong_answers_total", Help: "Number of rejected quiz answers"})
		StoreWriteFails = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_store_write_failures_total", Help: "Number of best-effort store writes that failed"})
		SubscriptionsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_subscriptions", Help: "Current number of subscribed channels"})
		SSEClientsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_sse_clients", Help: "Currently connected SSE clients"})
	})
}

// CountCommand increments the routed-command counter if metrics are up.
func CountCommand() {
	if CommandsRouted != nil {
		CommandsRouted.Inc()
	}
}

// SetSubscriptions records the current subscription count.
func SetSubscriptions(n int) {
	if SubscriptionsGauge != nil {
		SubscriptionsGauge.Set(float64(n))
	}
}

// Count increments a counter if metrics are up. Convenience for call sites
// that hold one of the package counters.
func Count(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// AddSSEClient / RemoveSSEClient track connected event-stream clients.
func AddSSEClient() {
	if SSEClientsGauge != nil {
		SSEClientsGauge.Inc()
	}
}

func RemoveSSEClient() {
	if SSEClientsGauge != nil {
		SSEClientsGauge.Dec()
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns the default logger annotated with the context's
// correlation id, if any.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if corr := GetCorrelation(ctx); corr != "" {
		return slog.Default().With(slog.String("corr", corr))
	}
	return slog.Default()
}
