package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-blog/pkg/blog/api"
	"github.com/tendant/simple-blog/pkg/blog/config"
)

func main() {
	// Load configuration from environment
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(serverConfig.Environment))

	ctx := context.Background()
	rt, err := serverConfig.BuildService(ctx)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	defer rt.Close()

	httpServer := &http.Server{
		Addr:              ":" + serverConfig.Port,
		Handler:           routes(serverConfig, rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Blog server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"postgres", serverConfig.UsesPostgres(),
			"storage", rt.Storage.Type)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
	}
	slog.Info("Server exiting")
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func routes(cfg *config.ServerConfig, rt *config.Runtime) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(slog.Default()))
	r.Use(middleware.Recoverer)

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)
	r.Get("/healthz/db", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.Ping(ctx); err != nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// filesystem uploads are served under their public prefix
	if rt.Storage.Type == "fs" && strings.HasPrefix(cfg.MediaURLPrefix, "/") {
		prefix := strings.TrimRight(cfg.MediaURLPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(rt.Storage.BaseDir))))
	}

	handler := api.NewHandler(rt.Service, api.WithMaxUploadBytes(cfg.MaxUploadBytes))
	r.With(rt.Authenticator.Middleware()).Mount("/api/v1", handler.Routes())

	return r
}
