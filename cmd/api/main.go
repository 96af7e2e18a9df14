package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jots/config"
	httpHandler "jots/internal/adapter/http/handler"
	memStorage "jots/internal/adapter/storage/memory"
	redisStorage "jots/internal/adapter/storage/redis"
	"jots/internal/core/ports"
	"jots/internal/events"
	kafkaEvents "jots/internal/events/kafka"
	"jots/internal/service"
	"jots/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Int("port", cfg.Server.Port).
		Msg("Starting Jots ledger service")

	if len(cfg.Auth.APIKeys) == 0 {
		log.Fatal().Msg("No API keys configured (set JOTS_AUTH_API_KEYS)")
	}

	ctx := context.Background()

	// Initialize in-memory stores
	customerStore := memStorage.NewCustomerStore()
	ledger := memStorage.NewTransactionLedger()
	idempotencyCache := memStorage.NewIdempotencyCache()

	// Optional Redis (rate limiting)
	var rateLimitStore *redisStorage.RateLimitStore
	var healthCheckers []ports.HealthChecker
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Info().Msg("Redis disabled, rate limiting off")
	}

	// Optional Kafka (transaction events)
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPub := kafkaEvents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPub.Close()
		publisher = kafkaPub
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Kafka transaction events enabled")
	}

	// Initialize the ledger service
	ledgerSvc := service.NewLedgerService(customerStore, ledger, idempotencyCache, publisher, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		APIKeys:        cfg.Auth.APIKeys,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		MaxBodyBytes:   cfg.Limits.MaxBodyBytes,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
