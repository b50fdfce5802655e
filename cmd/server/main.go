// Bloomify - Bloom's taxonomy exam question server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/bloomify/internal/agent"
	"github.com/ashureev/bloomify/internal/api"
	"github.com/ashureev/bloomify/internal/config"
	"github.com/ashureev/bloomify/internal/identity"
	"github.com/ashureev/bloomify/internal/llm"
	"github.com/ashureev/bloomify/internal/middleware"
	"github.com/ashureev/bloomify/internal/session"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server",
		"addr", cfg.Addr(),
		"dev", cfg.IsDevelopment(),
		"provider", cfg.LLM.Provider,
		"session_backend", cfg.Session.Backend,
		"shared_sessions", cfg.Session.Shared,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	provider, err := llm.NewProvider(ctx, cfg.LLM, logger)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM provider ready", "provider", cfg.LLM.Provider, "model", provider.ModelID())

	store, err := session.New(ctx, cfg.Session.Backend, cfg.Session.RedisAddr, session.Options{
		TTL:          cfg.Session.TTL,
		HistoryTurns: cfg.Session.HistoryTurns,
	})
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	svc := agent.NewService(provider, store, conversationLogger, agent.Config{
		MaxTokens:   cfg.LLM.MaxOutputTokens,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		TopK:        cfg.LLM.TopK,
		Timeout:     cfg.LLM.Timeout,
		Shared:      cfg.Session.Shared,
	})
	defer svc.Close()

	session.StartSweeper(ctx, store, cfg.Session.SweepInterval)

	rateLimit, stopRateLimit := middleware.RateLimit(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	defer stopRateLimit()

	// Initialize handlers.
	examHandler := api.NewExamHandler(svc, cfg.MaxRequestBodyBytes)
	healthHandler := api.NewHealthHandler(svc, cfg.LLM.Provider, 5*time.Second)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))
	r.Use(rateLimit)

	healthHandler.RegisterHealth(r)
	examHandler.RegisterRoutes(r)

	// Model calls can take up to LLM_TIMEOUT, so writes get headroom past it.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
