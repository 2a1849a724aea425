package worker

// email_worker.go
// Delivers persisted NotificacionEmail rows through SMTP, guarded by the
// circuit breaker. Failures schedule an exponential-backoff retry; rows that
// exhaust their attempts go to the DLQ as 'fallida'.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

const (
	maxEmailAttempts = 5
	retryBaseDelay   = time.Minute
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	NotificacionID string `json:"notificacion_id"`
}

type EmailWorker struct {
	notifRepo repository.NotificacionRepository
	mailer    *infra.Mailer
	cb        *infra.CircuitBreaker
	rdb       *redis.Client
}

func NewEmailWorker(notifRepo repository.NotificacionRepository, mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{notifRepo: notifRepo, mailer: mailer, cb: cb, rdb: rdb}
}

// Process attempts delivery of one pending notification.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}

	id, err := uuid.Parse(payload.NotificacionID)
	if err != nil {
		log.Error().Str("notificacion_id", payload.NotificacionID).Msg("email_worker: invalid id")
		return
	}

	notif, err := w.notifRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("notificacion_id", payload.NotificacionID).Msg("email_worker: notification not found")
		return
	}
	if notif.Estado != "pendiente" {
		return // duplicate job (cron + direct enqueue) — already handled
	}

	pdfPath := ""
	if notif.PDFPath != nil {
		pdfPath = *notif.PDFPath
	}

	sendErr := w.cb.Execute(func() error {
		return w.mailer.Send(notif.Destinatario, notif.Asunto, notif.Cuerpo, pdfPath)
	})
	if sendErr == nil {
		ahora := time.Now()
		notif.Estado = "enviada"
		notif.EnviadaEn = &ahora
		notif.NextRetryAt = nil
		notif.LastError = nil
		if err := w.notifRepo.Update(ctx, notif); err != nil {
			log.Error().Err(err).Str("notificacion_id", notif.ID.String()).Msg("email_worker: failed to mark as sent")
		}
		log.Info().Str("to", notif.Destinatario).Msg("email_worker: notification sent")
		return
	}

	if errors.Is(sendErr, infra.ErrCircuitOpen) {
		// Leave the row untouched: the retry cron re-attempts once the CB probes.
		log.Debug().Str("notificacion_id", notif.ID.String()).Msg("email_worker: circuit open, deferred")
		return
	}

	w.registrarFallo(ctx, notif, sendErr)
}

func (w *EmailWorker) registrarFallo(ctx context.Context, notif *model.NotificacionEmail, sendErr error) {
	notif.RetryCount++
	msg := sendErr.Error()
	notif.LastError = &msg

	if notif.RetryCount >= maxEmailAttempts {
		notif.Estado = "fallida"
		notif.NextRetryAt = nil
		payload, _ := json.Marshal(EmailJobPayload{NotificacionID: notif.ID.String()})
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", payload, msg, notif.RetryCount)
	} else {
		// Exponential backoff: 1m, 2m, 4m, 8m
		delay := retryBaseDelay << (notif.RetryCount - 1)
		next := time.Now().Add(delay)
		notif.NextRetryAt = &next
	}

	if err := w.notifRepo.Update(ctx, notif); err != nil {
		log.Error().Err(err).Str("notificacion_id", notif.ID.String()).Msg("email_worker: failed to record failure")
		return
	}
	log.Warn().
		Str("notificacion_id", notif.ID.String()).
		Int("attempts", notif.RetryCount).
		Str("estado", notif.Estado).
		Msg("email_worker: delivery failed")
}
