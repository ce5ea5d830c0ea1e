package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopinventory/internal/config"
	"shopinventory/internal/infra"
	"shopinventory/internal/repository"
	"shopinventory/internal/router"
	"shopinventory/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer := func(context.Context) error { return nil }
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err = infra.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init tracer")
		}
	}

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	notifier := worker.NewNotifier(infra.NewMailer(cfg), smtpCB)
	if !notifier.Configured() {
		log.Warn().Msg("SMTP_HOST not set: receipts are only written to disk and alerts only logged")
	}
	handlers := map[string]worker.Handler{
		worker.JobReceipt:  worker.NewReceiptWorker(repository.NewSaleRepository(db), notifier, cfg.PDFStoragePath),
		worker.JobLowStock: worker.NewAlertWorker(notifier, cfg.AlertEmail),
	}
	workers := worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	worker.StartDLQReplay(ctx, worker.ReplayConfig{RDB: rdb, CB: smtpCB})

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("shopinventory listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Stop pulling jobs and let in-flight ones finish.
	cancel()
	workers.Wait()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
