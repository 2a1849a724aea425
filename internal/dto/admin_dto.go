package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActualizarFichaRequest is the admin field-edit patch. Only non-nil fields
// are applied; last write wins (no version check — accepted behavior).
type ActualizarFichaRequest struct {
	Nombres            *string          `json:"nombres,omitempty"`
	Apellidos          *string          `json:"apellidos,omitempty"`
	FechaNacimiento    *time.Time       `json:"fecha_nacimiento,omitempty"`
	EstadoCivil        *string          `json:"estado_civil,omitempty" validate:"omitempty,oneof=soltero casado conviviente viudo divorciado"`
	Direccion          *string          `json:"direccion,omitempty"`
	Distrito           *string          `json:"distrito,omitempty"`
	Telefono           *string          `json:"telefono,omitempty"`
	ContactoEmergencia *string          `json:"contacto_emergencia,omitempty"`
	TelefonoEmergencia *string          `json:"telefono_emergencia,omitempty"`
	Cargo              *string          `json:"cargo,omitempty"`
	Categoria          *string          `json:"categoria,omitempty" validate:"omitempty,oneof=operario oficial peon"`
	FechaIngreso       *time.Time       `json:"fecha_ingreso,omitempty"`
	RemuneracionDiaria *decimal.Decimal `json:"remuneracion_diaria,omitempty"`
	SistemaPension     *string          `json:"sistema_pension,omitempty" validate:"omitempty,oneof=ONP AFP"`
	NombreAFP          *string          `json:"nombre_afp,omitempty"`
	CUSPP              *string          `json:"cuspp,omitempty"`
	Banco              *string          `json:"banco,omitempty"`
	CuentaBancaria     *string          `json:"cuenta_bancaria,omitempty"`
	CCI                *string          `json:"cci,omitempty"`
	RetccNumero        *string          `json:"retcc_numero,omitempty"`
	RetccVencimiento   *time.Time       `json:"retcc_vencimiento,omitempty"`
}

// EliminarMasivoRequest — admin bulk delete by record ids.
type EliminarMasivoRequest struct {
	IDs []string `json:"ids" binding:"required" validate:"required,min=1,dive,uuid"`
}

type ListarFichasResponse struct {
	Data  []FichaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
