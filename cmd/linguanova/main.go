// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fortunadacultura/lingua-nova/internal/cache"
	"github.com/fortunadacultura/lingua-nova/internal/compositor"
	"github.com/fortunadacultura/lingua-nova/internal/config"
	"github.com/fortunadacultura/lingua-nova/internal/dialogue"
	"github.com/fortunadacultura/lingua-nova/internal/handler/api"
	"github.com/fortunadacultura/lingua-nova/internal/logging"
	"github.com/fortunadacultura/lingua-nova/internal/media"
	"github.com/fortunadacultura/lingua-nova/internal/scheduler"
	"github.com/fortunadacultura/lingua-nova/internal/store"
	"github.com/fortunadacultura/lingua-nova/internal/syncer"
	"github.com/fortunadacultura/lingua-nova/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "lingua-nova - dialogue deck service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_DB_PATH                  SQLite database path (default: ./data/linguanova.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_SERVER_PORT              Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_DATA_DIR                 Dialogue library directory (default: ./data)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_UPLOADS_DIR              Uploaded package directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_SOURCE_LANGUAGE          Script source language (default: en)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_DEFAULT_TARGET_LANGUAGE  Preferred translation (default: pt)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_SYNC_SCHEDULE            Cron spec for the nightly sync (default: 0 3 * * *)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LN_REDIS_URL                Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Printf("linguanova %s\n", versionInfo)
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	cacher, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacher.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	// Core services
	queries := store.New(db)
	repo := dialogue.NewRepository(cfg.DataDir, cfg.Languages,
		cacher, time.Duration(cfg.CacheTTL)*time.Second)
	resolver := media.NewResolver(cfg.UploadsDir, logger)
	comp := compositor.New(queries, repo, resolver, logger)
	sync := syncer.New(queries, repo, comp, logger,
		cfg.SourceLanguage, cfg.DefaultTargetLanguage)

	// Bring the catalog up to date before serving
	if _, err := sync.ReconcileGlobalDecks(context.Background()); err != nil {
		slog.Warn("startup reconcile failed", "error", err)
	}

	sched := scheduler.New(sync, cfg.SyncSchedule, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)

	apiHandler := api.NewHandler(db, comp, sync, logger, versionInfo)
	r.Mount("/api", apiHandler.Routes())

	// Dialogue recordings: /media/audio/<lang>/<key>/<file>
	mediaDirFS := http.Dir(filepath.Join(cfg.DataDir, "audio"))
	r.Handle("/media/audio/*", http.StripPrefix("/media/audio/", http.FileServer(mediaDirFS)))

	// Imported package media: /uploads/packages/<owner>/<name>/media/<file>
	uploadsDirFS := http.Dir(cfg.UploadsDir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDirFS)))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
