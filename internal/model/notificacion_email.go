package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificacionEmail is a persisted outbound email (e.g. the notice sent to the
// admin inbox when a worker completes their ficha).
// Estado: "pendiente" | "enviada" | "fallida"
// Pending rows with next_retry_at in the past are re-attempted by the retry cron.
type NotificacionEmail struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FichaID uuid.UUID `gorm:"type:uuid;index;not null"`

	Destinatario string `gorm:"not null"`
	Asunto       string `gorm:"not null"`
	Cuerpo       string `gorm:"not null"`
	PDFPath      *string

	Estado      string `gorm:"type:varchar(20);not null;default:'pendiente'"`
	RetryCount  int    `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
	EnviadaEn *time.Time
}

// TableName overrides GORM's default pluralization (notificacion_emails → notificaciones_email).
func (NotificacionEmail) TableName() string { return "notificaciones_email" }
