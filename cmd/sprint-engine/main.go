package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solosprint/sprint-engine/internal/api"
	"github.com/solosprint/sprint-engine/internal/cache"
	"github.com/solosprint/sprint-engine/internal/catalog"
	"github.com/solosprint/sprint-engine/internal/cleanup"
	"github.com/solosprint/sprint-engine/internal/config"
	"github.com/solosprint/sprint-engine/internal/generator"
	"github.com/solosprint/sprint-engine/internal/profiles"
	"github.com/solosprint/sprint-engine/internal/recommend"
	"github.com/solosprint/sprint-engine/internal/sessions"
	"github.com/solosprint/sprint-engine/internal/storage"
	"github.com/solosprint/sprint-engine/internal/summary"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting sprint-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Seed the curated catalog
	if cfg.Catalog.Seed {
		loader := catalog.NewLoader(repo)
		if _, err := loader.SeedFromDir(initCtx, cfg.Catalog.Dir); err != nil {
			slog.Warn("failed to seed catalog", "dir", cfg.Catalog.Dir, "error", err)
		}
	}

	// Recommendation cache (optional; the API degrades to uncached)
	var recCache *cache.RecommendationCache
	recCache, err = cache.NewRecommendationCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Recommendations.CacheTTL)
	if err != nil {
		slog.Warn("redis unavailable, recommendations will not be cached", "error", err)
		recCache = nil
	}

	// Domain services
	profileService := profiles.New(repo, invalidatorOrNil(recCache))
	recommender := recommend.New(repo)
	gen := generator.New(repo)
	sessionEngine := sessions.New(repo)
	summaryBuilder := summary.New(repo)

	// Initialize cleanup worker
	cleaner := cleanup.NewCleaner(repo, cfg.Cleanup.Interval)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, api.Deps{
		Repo:         repo,
		Profiles:     profileService,
		Recommender:  recommender,
		Generator:    gen,
		Sessions:     sessionEngine,
		Summaries:    summaryBuilder,
		Cache:        cacheOrNil(recCache),
		RecLimit:     cfg.Recommendations.Limit,
		ResourcesDir: cfg.Resources.Dir,
	})
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if recCache != nil {
		if err := recCache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
		}
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("sprint-engine stopped")
}

// invalidatorOrNil avoids handing the profile service a typed nil
func invalidatorOrNil(c *cache.RecommendationCache) profiles.Invalidator {
	if c == nil {
		return nil
	}
	return c
}

// cacheOrNil avoids handing the server a typed nil
func cacheOrNil(c *cache.RecommendationCache) api.RecommendationCache {
	if c == nil {
		return nil
	}
	return c
}
