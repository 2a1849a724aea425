package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles — the role is fixed at registration; there is no self-promotion path.
const (
	RolAdmin  = "admin"
	RolObrero = "obrero"
)

// Perfil stores an authenticated user. Login is by DNI + password.
type Perfil struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DNI          string    `gorm:"uniqueIndex;not null;type:varchar(15)"`
	Nombres      string    `gorm:"not null"`
	Apellidos    string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	// SonidoAlertas is the persisted opt-in for audible notifications.
	SonidoAlertas bool `gorm:"not null;default:false"`
	Activo        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Perfil) TableName() string { return "perfiles" }
