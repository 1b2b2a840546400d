// Command quizbot is the main entrypoint for the multi-tenant chat bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Builds the feature catalog and restores persisted subscriptions.
//   - Connects to Twitch chat and routes inbound commands.
//   - Exposes an HTTP server with /healthz, /readyz, /metrics, and the
//     SSE /events endpoint for the companion UI.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/quizbot/bot"
	"github.com/onnwee/quizbot/chat"
	"github.com/onnwee/quizbot/config"
	"github.com/onnwee/quizbot/db"
	"github.com/onnwee/quizbot/quiz"
	"github.com/onnwee/quizbot/server"
	"github.com/onnwee/quizbot/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Error("chat config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing("quizbot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()
	if err := db.Migrate(context.Background(), database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wiring: stores, chat transport, notification hub, features, router.
	subscriptions := db.NewSubscriptionStore(database)
	scores := db.NewScoreStore(database)
	chatClient := chat.NewClient(cfg)
	hub := server.NewHub()

	catalog, err := bot.NewCatalog(
		quiz.NewFeature(ctx, quiz.NewEngine(), scores, chatClient, hub),
		bot.NewTestFeature(chatClient),
	)
	if err != nil {
		slog.Error("failed to build feature catalog", slog.Any("err", err))
		os.Exit(1)
	}
	if err := catalog.Setup(ctx); err != nil {
		slog.Error("feature setup failed", slog.Any("err", err))
		os.Exit(1)
	}

	manager := bot.NewManager(ctx, cfg.HomeChannel, catalog, subscriptions, chatClient)
	if err := manager.Setup(); err != nil {
		slog.Error("failed to restore subscriptions", slog.Any("err", err))
		os.Exit(1)
	}
	chatClient.OnCommand(manager.Route)

	// HTTP server (health/readiness/metrics/events)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewMux(database, catalog, hub, cfg.UIOrigin),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("http server listening", slog.String("addr", cfg.HTTPAddr), slog.String("component", "http"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", slog.Any("err", err))
		}
	}()

	// Chat connection blocks until shutdown.
	go func() {
		if err := chatClient.Run(ctx); err != nil {
			slog.Error("twitch chat connect error", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", slog.Any("err", err))
	}
}
