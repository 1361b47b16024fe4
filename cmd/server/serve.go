package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/personal-blog-api/internal/api"
	"github.com/personal-blog-api/internal/cache"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/service"
)

// serve runs the HTTP server until SIGINT or SIGTERM
func serve(ctx context.Context, c *cli.Command) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()
	log := e.log

	log.Info().Msg("Starting personal blog API server...")

	// Run migrations
	if !c.Bool("skip-migrations") {
		if err := e.db.RunMigrations(e.cfg.Server.MigrationsPath); err != nil {
			return err
		}
	}

	// Comment tree cache
	var trees cache.TreeCache = cache.Nop{}
	if e.cfg.Redis.CacheEnabled() {
		redisCache, err := cache.NewRedis(ctx, &e.cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, comment tree cache disabled")
		} else {
			defer redisCache.Close()
			trees = redisCache
			log.Info().Str("addr", e.cfg.Redis.Addr).Msg("Comment tree cache enabled")
		}
	}

	m := metrics.New()

	// Initialize repositories and services
	repos := repository.New(e.db)
	services := service.NewServices(service.Deps{
		Repos:     repos,
		TreeCache: trees,
		Metrics:   m,
		Config:    e.cfg,
		Log:       log,
	})

	// Initialize router
	router := api.NewRouter(services, e.cfg, api.RouterOptions{
		Metrics:     m,
		HealthCheck: e.db.HealthCheck,
	}, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + e.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  e.cfg.Server.ReadTimeout,
		WriteTimeout: e.cfg.Server.WriteTimeout,
		IdleTimeout:  e.cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", e.cfg.Server.Port).Int("max_comment_depth", e.cfg.Comments.MaxDepth).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
