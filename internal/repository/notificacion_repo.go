package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

type NotificacionRepository interface {
	Create(ctx context.Context, n *model.NotificacionEmail) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NotificacionEmail, error)
	Update(ctx context.Context, n *model.NotificacionEmail) error
	// ListPendingRetries feeds the retry cron: pending rows whose
	// next_retry_at has already passed, oldest first, capped at limit.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.NotificacionEmail, error)
}

type notificacionRepo struct{ db *gorm.DB }

func NewNotificacionRepository(db *gorm.DB) NotificacionRepository {
	return &notificacionRepo{db: db}
}

func (r *notificacionRepo) Create(ctx context.Context, n *model.NotificacionEmail) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NotificacionEmail, error) {
	var n model.NotificacionEmail
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	return &n, err
}

func (r *notificacionRepo) Update(ctx context.Context, n *model.NotificacionEmail) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notificacionRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.NotificacionEmail, error) {
	var pendientes []model.NotificacionEmail
	err := r.db.WithContext(ctx).
		Where("estado = 'pendiente' AND next_retry_at IS NOT NULL AND next_retry_at <= ?", now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&pendientes).Error
	return pendientes, err
}
