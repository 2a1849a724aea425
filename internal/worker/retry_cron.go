package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues delivery jobs for
// notifications stuck in estado='pendiente' with a next_retry_at in the past.
// Uses the Circuit Breaker state to avoid hammering a downed SMTP server.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	NotifRepo  repository.NotificacionRepository
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries pending notifications, and re-enqueues their delivery jobs.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed SMTP server
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	pendientes, err := cfg.NotifRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(pendientes) == 0 {
		return
	}

	log.Info().Int("count", len(pendientes)).Msg("retry_cron: re-enqueueing pending notifications")
	for _, n := range pendientes {
		if err := cfg.Dispatcher.EnqueueEmail(ctx, EmailJobPayload{NotificacionID: n.ID.String()}); err != nil {
			log.Error().Err(err).Str("notificacion_id", n.ID.String()).Msg("retry_cron: enqueue failed")
		}
	}
}
