package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/api"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/config"
	gdb "github.com/ayushraiyani0003/HRCentral-sub004/internal/db"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/log"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/metrics"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/store"
	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv"
	_ "github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/memory"
	_ "github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting HR Central API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"db", cfg.Database.Type,
		"cache", cfg.Cache.Backend,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("hrc-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Initialize database
	db, err := gdb.NewDatabase(&gdb.Config{Type: cfg.Database.Type, DSN: cfg.Database.PostgresDSN}, logger)
	if err != nil {
		logger.Fatalw("Failed to create database", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, db, gdb.AllSchemas()); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Disconnect(context.Background())
	logger.Infow("Database initialized")

	if cfg.Database.Seed {
		if err := gdb.SeedAll(ctx, db); err != nil {
			logger.Fatalw("Failed to seed database", "error", err)
		}
		logger.Infow("Database seeded")
	}

	// Setup list cache
	kvStore, err := kv.NewStoreFromConfig(kv.Config{
		Backend:         kv.Backend(cfg.Cache.Backend),
		RedisURL:        cfg.Cache.RedisURL,
		FailoverEnabled: cfg.Cache.Failover,
		Logger:          logger.Warnw,
	})
	if err != nil {
		logger.Fatalw("Failed to setup cache", "error", err)
	}
	cache := store.NewCache(kvStore, cfg.Cache.TTL, logger, metricsObj)
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		logger.Warnw("Cache ping failed", "error", err)
	} else {
		logger.Infow("Cache connection established")
	}

	// Setup API handler and middleware
	handler, err := api.NewHandler(db, cache, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to setup handlers", "error", err)
	}
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins, cfg.Security.RateLimitRPM)
	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Add metrics endpoint
	router.Handle("/metrics", metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
