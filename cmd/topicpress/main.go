// Package main is the entry point for the topicpress server.
// It loads configuration, opens the document store, wires optional Valkey
// and S3 backends, sets up routing, and starts the HTTP server with
// graceful shutdown support.
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

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"topicpress/internal/cache"
	"topicpress/internal/config"
	"topicpress/internal/content"
	"topicpress/internal/handlers"
	"topicpress/internal/media"
	"topicpress/internal/middleware"
	"topicpress/internal/render"
	"topicpress/internal/router"
	"topicpress/internal/storage"
	"topicpress/internal/store"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"data_file", cfg.DataFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the document store and create the default document on first run.
	docs, err := store.Open(cfg.DataFile, store.WithTimeout(cfg.StorageTimeout))
	if err != nil {
		slog.Error("failed to open data file", "error", err)
		os.Exit(1)
	}
	created, err := docs.EnsureInitialized(ctx)
	if err != nil {
		slog.Error("failed to initialize data file", "error", err)
		os.Exit(1)
	}
	if created {
		slog.Info("data file created with default categories", "path", docs.Path())
	}

	// Uploads go to S3-compatible storage when configured, local disk otherwise.
	var backend storage.Backend
	if cfg.S3Enabled() {
		s3Backend, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		backend = s3Backend
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			slog.Error("failed to prepare upload directory", "error", err)
			os.Exit(1)
		}
		backend = local
		slog.Info("storing uploads on local disk", "dir", local.Dir())
	}

	// The page cache is optional; a nil cache renders every request.
	var pageCache *cache.PageCache
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unavailable, page cache disabled", "error", err)
		} else {
			defer client.Close()
			pageCache = cache.NewPageCache(client, cfg.PageCacheTTL)
			slog.Info("page cache enabled", "ttl", cfg.PageCacheTTL)
		}
	}

	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Edits made to the data file outside this process drop cached pages.
	if cfg.WatchDataFile && pageCache != nil {
		go func() {
			err := docs.Watch(ctx, func() {
				slog.Info("data file changed on disk, clearing page cache")
				pageCache.InvalidateAll(context.Background())
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("data file watcher stopped", "error", err)
			}
		}()
	}

	service := content.NewService(docs)
	images := media.NewImageStore(backend, cfg.UploadMaxBytes)

	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRatePerMinute, time.Minute)
	defer uploadLimiter.Stop()

	r := router.New(
		handlers.NewAPI(service, images, pageCache),
		handlers.NewPublic(service, renderer, pageCache),
		backend,
		uploadLimiter,
	)

	// WriteTimeout accommodates slow image uploads up to the size limit.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger returns JSON logs in production and colored text elsewhere.
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stdout), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
