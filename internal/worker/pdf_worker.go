package worker

// pdf_worker.go
// Generates the legal ficha PDF when a worker finalizes, then records the
// admin notification email (estado='pendiente') and enqueues its delivery.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

// PDFJobPayload is the job envelope sent to QueuePDF.
type PDFJobPayload struct {
	FichaID string `json:"ficha_id"`
}

type PDFWorker struct {
	fichaRepo      repository.FichaRepository
	notifRepo      repository.NotificacionRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	adminEmail     string
}

func NewPDFWorker(
	fichaRepo repository.FichaRepository,
	notifRepo repository.NotificacionRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	adminEmail string,
) *PDFWorker {
	return &PDFWorker{
		fichaRepo:      fichaRepo,
		notifRepo:      notifRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		adminEmail:     adminEmail,
	}
}

// Process handles a single PDF job:
//  1. Fetch the ficha snapshot
//  2. Render the legal sheet with fpdf
//  3. Persist a NotificacionEmail (pendiente) pointing at the PDF
//  4. Enqueue the delivery job
func (w *PDFWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload PDFJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("pdf_worker: invalid payload")
		return
	}

	fichaID, err := uuid.Parse(payload.FichaID)
	if err != nil {
		log.Error().Str("ficha_id", payload.FichaID).Msg("pdf_worker: invalid ficha_id")
		return
	}

	ficha, err := w.fichaRepo.FindByID(ctx, fichaID)
	if err != nil {
		log.Error().Err(err).Str("ficha_id", payload.FichaID).Msg("pdf_worker: ficha not found")
		return
	}

	pdfPath, err := infra.GenerateFichaPDF(ficha, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("ficha_id", payload.FichaID).Msg("pdf_worker: PDF generation failed")
		return
	}
	log.Info().Str("ficha_id", payload.FichaID).Str("pdf", pdfPath).Msg("pdf_worker: ficha PDF generated")

	if w.adminEmail == "" {
		return // no admin inbox configured — PDF stays on disk for manual export
	}

	ahora := time.Now()
	notif := &model.NotificacionEmail{
		FichaID:      fichaID,
		Destinatario: w.adminEmail,
		Asunto:       fmt.Sprintf("Ficha completada: %s %s (DNI %s)", ficha.Nombres, ficha.Apellidos, ficha.DNI),
		Cuerpo: fmt.Sprintf(
			"El trabajador %s %s (DNI %s) completó su ficha de datos de personal. Se adjunta el documento generado.",
			ficha.Nombres, ficha.Apellidos, ficha.DNI),
		PDFPath:     &pdfPath,
		Estado:      "pendiente",
		NextRetryAt: &ahora,
	}
	if err := w.notifRepo.Create(ctx, notif); err != nil {
		log.Error().Err(err).Str("ficha_id", payload.FichaID).Msg("pdf_worker: failed to record notification")
		return
	}

	if err := w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{NotificacionID: notif.ID.String()}); err != nil {
		// The retry cron will pick the pending row up anyway.
		log.Warn().Err(err).Str("notificacion_id", notif.ID.String()).Msg("pdf_worker: enqueue email failed")
	}
}
