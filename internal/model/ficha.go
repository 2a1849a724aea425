package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de la ficha. Only the worker submit (with declaration accepted)
// moves pending → completed; only an admin reopen moves it back.
const (
	EstadoPendiente  = "pending"
	EstadoCompletada = "completed"
)

// Ficha is the canonical worker personnel record — exactly one per Perfil.
// It accumulates the multi-step onboarding data (personal, familia, laboral,
// documentos) plus biometrics, the SSOMA induction flag, and the per-document
// legal form sub-states in DocStates.
type Ficha struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PerfilID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	// Identidad
	DNI       string `gorm:"index;not null"`
	Nombres   string `gorm:"not null"`
	Apellidos string `gorm:"not null"`

	// Paso 1 — datos personales
	FechaNacimiento     *time.Time
	EstadoCivil         *string `gorm:"type:varchar(20)"`
	Direccion           *string
	Distrito            *string
	Telefono            *string `gorm:"type:varchar(20)"`
	ContactoEmergencia  *string
	TelefonoEmergencia  *string `gorm:"type:varchar(20)"`

	// Paso 2 — familia (JSONB; decoded at the gateway, never passed as text)
	Conyuge *Conyuge `gorm:"type:jsonb"`
	Hijos   Hijos    `gorm:"type:jsonb"`

	// Paso 3 — datos laborales
	Cargo              *string
	Categoria          *string `gorm:"type:varchar(20)"` // operario | oficial | peon
	FechaIngreso       *time.Time
	RemuneracionDiaria *decimal.Decimal `gorm:"type:decimal(10,2)"`
	SistemaPension     *string          `gorm:"type:varchar(10)"` // ONP | AFP
	NombreAFP          *string
	CUSPP              *string `gorm:"type:varchar(20)"`
	Banco              *string
	CuentaBancaria     *string
	CCI                *string `gorm:"type:varchar(30)"`
	RetccNumero        *string
	RetccVencimiento   *time.Time

	// Paso 4 — documentos subidos (URLs publicas del storage)
	DNIFrenteURL               *string
	DNIReversoURL              *string
	RetccURL                   *string
	CertificadoAntecedentesURL *string
	CertificadoMedicoURL       *string

	// Biometria — independently settable/clearable
	FirmaURL  *string
	HuellaURL *string

	// Estado global y declaracion jurada
	Estado                string `gorm:"type:varchar(20);not null;default:'pending'"`
	DeclaracionAceptada   bool   `gorm:"not null;default:false"`
	DeclaracionAceptadaEn *time.Time

	// Sub-estados por documento legal (risst, capacitacion, induccion, ...)
	DocStates DocStates `gorm:"type:jsonb;not null;default:'{}'"`

	// Induccion SSOMA — set exactly once, never reset by the worker
	SsomaCompletada   bool `gorm:"not null;default:false"`
	SsomaCompletadaEn *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocState is the per-document sub-state.
// Status: "locked" | "unlocked" | "completed".
// Status == "completed" implies non-nil CompletedAt and a non-empty Data payload.
type DocState struct {
	Status      string         `json:"status"`
	Data        map[string]any `json:"data,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// DocStates maps document-type keys to their sub-state. Stored as JSONB.
type DocStates map[string]DocState

func (d DocStates) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *DocStates) Scan(src any) error {
	if src == nil {
		*d = DocStates{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("doc_states: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, d)
}

// Clone returns a deep copy. Transition code works on copies so the cached
// snapshot used for realtime diffing is never mutated in place.
func (d DocStates) Clone() DocStates {
	out := make(DocStates, len(d))
	for k, st := range d {
		cp := DocState{Status: st.Status}
		if st.CompletedAt != nil {
			t := *st.CompletedAt
			cp.CompletedAt = &t
		}
		if st.Data != nil {
			cp.Data = make(map[string]any, len(st.Data))
			for dk, dv := range st.Data {
				cp.Data[dk] = dv
			}
		}
		out[k] = cp
	}
	return out
}

// Conyuge holds optional spouse data.
type Conyuge struct {
	Nombres         string     `json:"nombres"`
	Apellidos       string     `json:"apellidos"`
	DNI             string     `json:"dni"`
	FechaNacimiento *time.Time `json:"fecha_nacimiento,omitempty"`
}

func (c Conyuge) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *Conyuge) Scan(src any) error {
	return scanJSON(src, c)
}

// Hijo is one child entry in the family step.
type Hijo struct {
	Nombres         string     `json:"nombres"`
	Apellidos       string     `json:"apellidos"`
	DNI             string     `json:"dni,omitempty"`
	FechaNacimiento *time.Time `json:"fecha_nacimiento,omitempty"`
	ActaNacimientoURL *string  `json:"acta_nacimiento_url,omitempty"`
}

// Hijos is the children list, stored as a JSONB array.
type Hijos []Hijo

func (h Hijos) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	return string(b), err
}

func (h *Hijos) Scan(src any) error {
	if src == nil {
		*h = nil
		return nil
	}
	return scanJSON(src, h)
}

func scanJSON(src, dest any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, dest)
}
