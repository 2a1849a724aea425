package dto

import "time"

// EmpleadoImport is one row of the mass-import payload. Parsing the source
// file is a client concern; the backend receives already-structured rows.
type EmpleadoImport struct {
	DNI          string     `json:"dni" validate:"required,min=8,max=15"`
	Nombres      string     `json:"nombres" validate:"required"`
	Apellidos    string     `json:"apellidos" validate:"required"`
	Cargo        *string    `json:"cargo,omitempty"`
	Categoria    *string    `json:"categoria,omitempty" validate:"omitempty,oneof=operario oficial peon"`
	FechaIngreso *time.Time `json:"fecha_ingreso,omitempty"`
}

type ImportarRequest struct {
	Empleados []EmpleadoImport `json:"empleados" binding:"required" validate:"required,min=1,dive"`
}

// DetalleErrorImport identifies a failed row. Partial failure is the normal
// expected outcome of a bulk import, never a fatal abort.
type DetalleErrorImport struct {
	DNI   string `json:"dni"`
	Error string `json:"error"`
}

type ResultadoImportacion struct {
	Exitosos int                  `json:"exitosos"`
	Errores  int                  `json:"errores"`
	Detalles []DetalleErrorImport `json:"detalles"`
}

// ResultadoEliminacion summarizes a bulk delete the same way.
type ResultadoEliminacion struct {
	Exitosos int                  `json:"exitosos"`
	Errores  int                  `json:"errores"`
	Detalles []DetalleErrorImport `json:"detalles"`
}
