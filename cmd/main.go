// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"eventum/internal/config"
	"eventum/internal/database"
	"eventum/internal/handler"
	"eventum/internal/repository/postgres"
	"eventum/internal/service"
)

func main() {
	ctx := context.Background()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// ── 1. Storage ────────────────────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.CreateSchema(ctx, pool); err != nil {
		slog.Error("schema", "error", err)
		os.Exit(1)
	}
	store := postgres.New(pool)
	slog.Info("connected to postgres", "db", cfg.DB.Name)

	// ── 2. Services and handlers ──────────────────────────────────────────
	events := service.NewEventService(store, nil)
	requests := service.NewRequestService(store, nil)
	comments := service.NewCommentService(store, nil)
	stats := service.NewStatsService(store, nil)
	dir := service.NewDirectoryService(store)
	h := handler.New(events, requests, comments, stats, dir)

	// ── 3. Router ─────────────────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger)
	r.Use(handler.CORS)

	limiter := handler.NewRateLimiter(handler.RateLimiterConfig{
		RPS:     cfg.RateRPS,
		Burst:   cfg.RateBurst,
		IdleTTL: 3 * time.Minute,
	})
	r.Use(limiter.Middleware)

	// The cache wraps only the public read routes; per-user listings
	// must always reflect the caller's latest writes.
	var public []func(http.Handler) http.Handler
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		public = append(public, handler.ResponseCache(rdb, cfg.CacheTTL))
		slog.Info("response cache enabled", "redis", cfg.Redis.Addr)
	}

	h.Routes(r, public...)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
