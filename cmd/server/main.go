package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/config"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/router"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Async pipeline: PDF generation + email delivery ──────────────────────
	// Worker handlers are wired here (composition root) so the pool has full
	// access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	fichaRepo := repository.NewFichaRepository(db)
	notifRepo := repository.NewNotificacionRepository(db)

	workerHandlers := &worker.WorkerHandlers{
		PDF:   worker.NewPDFWorker(fichaRepo, notifRepo, dispatcher, cfg.PDFStoragePath, cfg.AdminEmail),
		Email: worker.NewEmailWorker(notifRepo, mailer, smtpCB, rdb),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		NotifRepo:  notifRepo,
		Dispatcher: dispatcher,
		CB:         smtpCB,
	})

	// ── Realtime: Redis channel → controller → websocket hub ─────────────────
	hub := realtime.NewHub()
	controller := realtime.NewController(hub, hub)
	go realtime.NewSubscriber(rdb, controller).Run(ctx)

	r := router.New(cfg, db, rdb, hub, dispatcher, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("RUAG backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
