// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"filmtag/internal/api"
	"filmtag/internal/exiftool"
	"filmtag/internal/pipeline"
	"filmtag/internal/sse"
	"filmtag/internal/storage"
	"filmtag/internal/watcher"
)

// NewLogger builds the structured JSON logger and installs it as default.
func NewLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// NewPipeline wires the exiftool wrapper and pipeline from configuration.
func NewPipeline(cfg *Config, logger *slog.Logger) *pipeline.Pipeline {
	tool := exiftool.New(cfg.ExifTool.Binary, cfg.Library.Extensions)
	return pipeline.New(logger, tool, pipeline.Options{
		Library:     cfg.Library.Path,
		RecipesFile: cfg.Recipes.Path,
		OutputDir:   cfg.Output.Dir,
	})
}

// Run starts serve mode with the given options: an initial pipeline run, a
// library watcher that re-runs on changes, and the HTTP API with SSE events.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := NewLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("recipes_path", cfg.Recipes.Path),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	fs, err := storage.NewFS(cfg.Library.Path, cfg.Library.Extensions)
	if err != nil {
		return fmt.Errorf("init library: %w", err)
	}

	tool := exiftool.New(cfg.ExifTool.Binary, cfg.Library.Extensions)
	if v, verErr := tool.Version(ctx); verErr != nil {
		logger.Warn("exiftool not available", slog.String("error", verErr.Error()))
	} else {
		logger.Info("exiftool detected", slog.String("version", v))
	}

	p := pipeline.New(logger, tool, pipeline.Options{
		Library:     cfg.Library.Path,
		RecipesFile: cfg.Recipes.Path,
		OutputDir:   cfg.Output.Dir,
	})

	// Initial run. A broken recipes file must not keep the server from
	// starting; the API reports the absence of a run until one succeeds.
	if _, err := p.Run(ctx, false); err != nil {
		logger.Warn("initial run failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker()
	defer broker.Close()

	runOnce := func(runCtx context.Context) {
		broker.Publish(sse.Event{Type: sse.EventRunStarted})
		report, runErr := p.Run(runCtx, false)
		if runErr != nil {
			logger.Error("run failed", slog.String("error", runErr.Error()))
			broker.Publish(sse.Event{Type: sse.EventRunFailed, Data: map[string]string{"error": runErr.Error()}})
			return
		}
		broker.Publish(sse.Event{Type: sse.EventRunFinished, Data: report})
	}

	r := api.NewRouter(api.Options{
		Logger:      logger,
		Pipeline:    p,
		Library:     fs,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
		Events:      broker,
	})

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Re-run the pipeline when the library changes.
	g.Go(func() error {
		return watcher.Watch(gCtx, fs, logger, cfg.Library.Debounce, func() {
			runOnce(gCtx)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
