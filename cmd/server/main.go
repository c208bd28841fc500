package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/mmuslimabdulj/pairchat/internal/config"
	httpHandler "github.com/mmuslimabdulj/pairchat/internal/delivery/http"
	"github.com/mmuslimabdulj/pairchat/internal/delivery/ws"
	"github.com/mmuslimabdulj/pairchat/internal/identity"
	"github.com/mmuslimabdulj/pairchat/internal/middleware"
	"github.com/mmuslimabdulj/pairchat/internal/presence"
	"github.com/mmuslimabdulj/pairchat/internal/store/sqlite"
)

func newLogger(level string) *slog.Logger {
	if level == "silent" || level == "off" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	log := newLogger(cfg.LogLevel)

	if cfg.SessionSecret == "" {
		log.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	// Durable storage backs both the message log and the user directory
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// The presence registry is owned here and injected into the relay;
	// its lifetime is the process lifetime.
	registry := presence.NewRegistry()
	hub := ws.NewHub(registry, db, db, log)

	resolver := identity.NewSessionResolver(
		[]byte(cfg.SessionSecret), cfg.SessionName, int(cfg.SessionTTL.Seconds()))
	handler := httpHandler.NewHandler(hub, resolver, cfg.AllowedOrigins, log)

	wsLimiter := middleware.NewIPRateLimiter(cfg.RateLimitWS, 10)
	apiLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAPI, 20)

	r := mux.NewRouter()
	r.HandleFunc("/ws", middleware.RateLimitFunc(wsLimiter, handler.HandleWebSocket))
	r.HandleFunc("/api/users", middleware.RateLimitFunc(apiLimiter, handler.HandleUsers)).Methods("GET")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.SecurityHeaders(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("pairchat relay listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "err", err)
		os.Exit(1)
	}

	log.Info("server exited gracefully")
}
