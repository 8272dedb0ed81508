package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"comandas/internal/config"
	"comandas/internal/infra"
	"comandas/internal/middleware"
	"comandas/internal/router"
	"comandas/internal/ws"
	"comandas/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if cfg.MigrateOnStart {
		if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_URL vacio: rate limit por proceso, sin cache ni cola de eventos")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var bg sync.WaitGroup

	// Live board
	hub := ws.NewHub()
	bg.Add(1)
	go func() {
		defer bg.Done()
		hub.Run(ctx)
	}()

	// Event stream: service → redis queue → worker pool → kafka
	deps := router.Deps{
		DB:      db,
		Redis:   rdb,
		Limiter: middleware.NewRateLimitStore(ctx, rdb),
		Hub:     hub,
	}
	publisher := infra.NewPublisher(cfg.Brokers(), cfg.KafkaTopic, infra.NewBreaker(infra.KafkaBreakerConfig()))
	var pool *worker.Pool
	switch {
	case publisher == nil:
		log.Info().Msg("KAFKA_BROKERS vacio: stream de eventos deshabilitado")
	case rdb == nil:
		log.Warn().Msg("KAFKA_BROKERS requiere REDIS_URL para la cola de eventos: stream deshabilitado")
	default:
		deps.KafkaCB = publisher.Breaker()
		deps.Eventos = worker.NewDispatcher(rdb)
		pool = worker.NewPool(rdb, worker.QueueEventos, cfg.WorkerPoolSize)
		pool.Handle(worker.JobEventoComanda, worker.NewEventoWorker(publisher))
		pool.Start(ctx)
		worker.StartRetryCron(ctx, rdb)
	}

	r := router.New(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("comandas backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	bg.Wait()
	if pool != nil {
		pool.Wait()
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("kafka writer close")
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev gets the pretty console writer, prod gets JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "comandas").Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
