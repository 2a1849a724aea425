package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

// Paso names accepted by PUT /v1/fichas/me/pasos/:paso.
const (
	PasoPersonal = "personal"
	PasoFamilia  = "familia"
	PasoLaboral  = "laboral"
)

// PasoPersonalRequest — step 1 of the wizard. Every save persists a partial
// snapshot so the worker never loses progress.
type PasoPersonalRequest struct {
	Nombres            string     `json:"nombres" validate:"required"`
	Apellidos          string     `json:"apellidos" validate:"required"`
	FechaNacimiento    *time.Time `json:"fecha_nacimiento,omitempty"`
	EstadoCivil        *string    `json:"estado_civil,omitempty" validate:"omitempty,oneof=soltero casado conviviente viudo divorciado"`
	Direccion          *string    `json:"direccion,omitempty"`
	Distrito           *string    `json:"distrito,omitempty"`
	Telefono           *string    `json:"telefono,omitempty"`
	ContactoEmergencia *string    `json:"contacto_emergencia,omitempty"`
	TelefonoEmergencia *string    `json:"telefono_emergencia,omitempty"`
}

// PasoFamiliaRequest — step 2: optional spouse and children.
type PasoFamiliaRequest struct {
	Conyuge *model.Conyuge `json:"conyuge,omitempty"`
	Hijos   model.Hijos    `json:"hijos,omitempty" validate:"dive"`
}

// PasoLaboralRequest — step 3: position, pension system, banking.
type PasoLaboralRequest struct {
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

// FinalizarRequest — last step. The declaration checkbox is the gate for
// pending → completed.
type FinalizarRequest struct {
	DeclaracionAceptada bool `json:"declaracion_aceptada"`
}

// CompletarDocumentoRequest carries the signed payload of one legal document.
type CompletarDocumentoRequest struct {
	Datos map[string]any `json:"datos" binding:"required"`
}

// ResetearDocumentoRequest — resetting a completed document destroys its
// captured data, so the call site must confirm explicitly.
type ResetearDocumentoRequest struct {
	Confirmar bool `json:"confirmar"`
}

type DocStateResponse struct {
	Status      string         `json:"status"`
	Data        map[string]any `json:"data,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// FichaResponse is the full record view shared by the worker portal and the
// admin detail drawer.
type FichaResponse struct {
	ID        string `json:"id"`
	PerfilID  string `json:"perfil_id"`
	DNI       string `json:"dni"`
	Nombres   string `json:"nombres"`
	Apellidos string `json:"apellidos"`

	FechaNacimiento    *time.Time `json:"fecha_nacimiento,omitempty"`
	EstadoCivil        *string    `json:"estado_civil,omitempty"`
	Direccion          *string    `json:"direccion,omitempty"`
	Distrito           *string    `json:"distrito,omitempty"`
	Telefono           *string    `json:"telefono,omitempty"`
	ContactoEmergencia *string    `json:"contacto_emergencia,omitempty"`
	TelefonoEmergencia *string    `json:"telefono_emergencia,omitempty"`

	Conyuge *model.Conyuge `json:"conyuge,omitempty"`
	Hijos   model.Hijos    `json:"hijos,omitempty"`

	Cargo              *string          `json:"cargo,omitempty"`
	Categoria          *string          `json:"categoria,omitempty"`
	FechaIngreso       *time.Time       `json:"fecha_ingreso,omitempty"`
	RemuneracionDiaria *decimal.Decimal `json:"remuneracion_diaria,omitempty"`
	SistemaPension     *string          `json:"sistema_pension,omitempty"`
	NombreAFP          *string          `json:"nombre_afp,omitempty"`
	CUSPP              *string          `json:"cuspp,omitempty"`
	Banco              *string          `json:"banco,omitempty"`
	CuentaBancaria     *string          `json:"cuenta_bancaria,omitempty"`
	CCI                *string          `json:"cci,omitempty"`
	RetccNumero        *string          `json:"retcc_numero,omitempty"`
	RetccVencimiento   *time.Time       `json:"retcc_vencimiento,omitempty"`

	DNIFrenteURL               *string `json:"dni_frente_url,omitempty"`
	DNIReversoURL              *string `json:"dni_reverso_url,omitempty"`
	RetccURL                   *string `json:"retcc_url,omitempty"`
	CertificadoAntecedentesURL *string `json:"certificado_antecedentes_url,omitempty"`
	CertificadoMedicoURL       *string `json:"certificado_medico_url,omitempty"`

	FirmaURL  *string `json:"firma_url,omitempty"`
	HuellaURL *string `json:"huella_url,omitempty"`

	Estado                string                      `json:"estado"`
	DeclaracionAceptada   bool                        `json:"declaracion_aceptada"`
	DeclaracionAceptadaEn *time.Time                  `json:"declaracion_aceptada_en,omitempty"`
	DocStates             map[string]DocStateResponse `json:"doc_states"`

	SsomaCompletada   bool       `json:"ssoma_completada"`
	SsomaCompletadaEn *time.Time `json:"ssoma_completada_en,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NuevaFichaResponse maps the persisted record to its API view.
func NuevaFichaResponse(f *model.Ficha) *FichaResponse {
	resp := &FichaResponse{
		ID:        f.ID.String(),
		PerfilID:  f.PerfilID.String(),
		DNI:       f.DNI,
		Nombres:   f.Nombres,
		Apellidos: f.Apellidos,

		FechaNacimiento:    f.FechaNacimiento,
		EstadoCivil:        f.EstadoCivil,
		Direccion:          f.Direccion,
		Distrito:           f.Distrito,
		Telefono:           f.Telefono,
		ContactoEmergencia: f.ContactoEmergencia,
		TelefonoEmergencia: f.TelefonoEmergencia,

		Conyuge: f.Conyuge,
		Hijos:   f.Hijos,

		Cargo:              f.Cargo,
		Categoria:          f.Categoria,
		FechaIngreso:       f.FechaIngreso,
		RemuneracionDiaria: f.RemuneracionDiaria,
		SistemaPension:     f.SistemaPension,
		NombreAFP:          f.NombreAFP,
		CUSPP:              f.CUSPP,
		Banco:              f.Banco,
		CuentaBancaria:     f.CuentaBancaria,
		CCI:                f.CCI,
		RetccNumero:        f.RetccNumero,
		RetccVencimiento:   f.RetccVencimiento,

		DNIFrenteURL:               f.DNIFrenteURL,
		DNIReversoURL:              f.DNIReversoURL,
		RetccURL:                   f.RetccURL,
		CertificadoAntecedentesURL: f.CertificadoAntecedentesURL,
		CertificadoMedicoURL:       f.CertificadoMedicoURL,

		FirmaURL:  f.FirmaURL,
		HuellaURL: f.HuellaURL,

		Estado:                f.Estado,
		DeclaracionAceptada:   f.DeclaracionAceptada,
		DeclaracionAceptadaEn: f.DeclaracionAceptadaEn,
		DocStates:             make(map[string]DocStateResponse, len(f.DocStates)),

		SsomaCompletada:   f.SsomaCompletada,
		SsomaCompletadaEn: f.SsomaCompletadaEn,

		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	for clave, st := range f.DocStates {
		resp.DocStates[clave] = DocStateResponse{Status: st.Status, Data: st.Data, CompletedAt: st.CompletedAt}
	}
	return resp
}

// FichaFilter drives the admin listing: free-text search over DNI/nombres,
// estado filter, pagination.
type FichaFilter struct {
	Busqueda string
	Estado   string // "" = todos | pending | completed
	Page     int
	Limit    int
}
