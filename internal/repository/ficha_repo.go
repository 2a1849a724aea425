package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

// FichaRepository defines the data access contract for worker records.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory fakes.
type FichaRepository interface {
	Create(ctx context.Context, f *model.Ficha) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ficha, error)
	// FindByPerfil is the getOne(ownerId) gateway operation: at most one ficha
	// per profile, enforced by the unique index on perfil_id.
	FindByPerfil(ctx context.Context, perfilID uuid.UUID) (*model.Ficha, error)
	// Upsert keyed by owner id; the unique index makes the insert race safe.
	Upsert(ctx context.Context, f *model.Ficha) error
	List(ctx context.Context, filter dto.FichaFilter) ([]model.Ficha, int64, error)
	Update(ctx context.Context, f *model.Ficha) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type fichaRepo struct{ db *gorm.DB }

func NewFichaRepository(db *gorm.DB) FichaRepository { return &fichaRepo{db: db} }

func (r *fichaRepo) Create(ctx context.Context, f *model.Ficha) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fichaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ficha, error) {
	var f model.Ficha
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	return &f, err
}

func (r *fichaRepo) FindByPerfil(ctx context.Context, perfilID uuid.UUID) (*model.Ficha, error) {
	var f model.Ficha
	err := r.db.WithContext(ctx).Where("perfil_id = ?", perfilID).First(&f).Error
	return &f, err
}

func (r *fichaRepo) Upsert(ctx context.Context, f *model.Ficha) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "perfil_id"}},
		UpdateAll: true,
	}).Create(f).Error
}

func (r *fichaRepo) List(ctx context.Context, filter dto.FichaFilter) ([]model.Ficha, int64, error) {
	var fichas []model.Ficha
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Ficha{})

	if filter.Busqueda != "" {
		like := "%" + filter.Busqueda + "%"
		q = q.Where("dni ILIKE ? OR nombres ILIKE ? OR apellidos ILIKE ?", like, like, like)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("apellidos ASC, nombres ASC").Limit(filter.Limit).Offset(offset).Find(&fichas).Error
	return fichas, total, err
}

func (r *fichaRepo) Update(ctx context.Context, f *model.Ficha) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *fichaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Ficha{}, "id = ?", id).Error
}
