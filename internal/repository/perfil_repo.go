package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

type PerfilRepository interface {
	Create(ctx context.Context, p *model.Perfil) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Perfil, error)
	FindByDNI(ctx context.Context, dni string) (*model.Perfil, error)
	Update(ctx context.Context, p *model.Perfil) error
}

type perfilRepo struct{ db *gorm.DB }

func NewPerfilRepository(db *gorm.DB) PerfilRepository { return &perfilRepo{db: db} }

func (r *perfilRepo) Create(ctx context.Context, p *model.Perfil) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *perfilRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Perfil, error) {
	var p model.Perfil
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *perfilRepo) FindByDNI(ctx context.Context, dni string) (*model.Perfil, error) {
	var p model.Perfil
	err := r.db.WithContext(ctx).Where("dni = ? AND activo = true", dni).First(&p).Error
	return &p, err
}

func (r *perfilRepo) Update(ctx context.Context, p *model.Perfil) error {
	return r.db.WithContext(ctx).Save(p).Error
}
