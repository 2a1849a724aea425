// Package docstate encodes every legal state transition of a ficha and of its
// per-document sub-states. All functions are pure: they never touch the DB and
// never mutate their inputs — persistence is the caller's responsibility.
// This is the only place where transition rules may be evaluated.
package docstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

// Per-document statuses.
const (
	StatusBloqueado    = "locked"
	StatusDesbloqueado = "unlocked"
	StatusCompletado   = "completed"
)

// Sentinel errors — handlers map these to HTTP 409 / 422.
var (
	// ErrTransicionInvalida: the attempted change is not in the transition table.
	ErrTransicionInvalida = errors.New("transicion invalida")
	// ErrPrecondicionFallida: the transition exists but its preconditions fail.
	ErrPrecondicionFallida = errors.New("precondicion fallida")
)

// Claves de documentos legales. Every new ficha starts with all of them locked.
var Claves = []string{"risst", "capacitacion", "induccion", "epp", "acta_derecho", "iperc"}

var etiquetas = map[string]string{
	"risst":        "Reglamento Interno de Seguridad (RISST)",
	"capacitacion": "Constancia de Capacitación",
	"induccion":    "Constancia de Inducción",
	"epp":          "Entrega de EPP",
	"acta_derecho": "Acta de Derecho a Saber",
	"iperc":        "Matriz IPERC",
}

// Etiqueta returns the human-readable label for a document key, or the key
// itself when unknown (notifications fall back to the raw key).
func Etiqueta(clave string) string {
	if e, ok := etiquetas[clave]; ok {
		return e
	}
	return clave
}

// NuevosDocStates builds the initial sub-state map: every key locked.
func NuevosDocStates() model.DocStates {
	ds := make(model.DocStates, len(Claves))
	for _, c := range Claves {
		ds[c] = model.DocState{Status: StatusBloqueado}
	}
	return ds
}

// Resultado is the outcome of a successful per-document transition: the new
// sub-state map plus a human-readable message for the notification layer.
type Resultado struct {
	DocStates model.DocStates
	Mensaje   string
}

// SubmitInput carries the finalize-step preconditions checked by Submit.
type SubmitInput struct {
	CamposObligatoriosCompletos bool
	DeclaracionAceptada         bool
}

// Submit validates pending → completed. Submitting an already completed ficha
// is rejected; missing fields or an unaccepted declaration fail the
// precondition and leave the estado untouched.
func Submit(estado string, in SubmitInput) (string, error) {
	switch estado {
	case model.EstadoCompletada:
		return estado, fmt.Errorf("%w: la ficha ya fue enviada", ErrTransicionInvalida)
	case model.EstadoPendiente:
		if !in.CamposObligatoriosCompletos {
			return estado, fmt.Errorf("%w: faltan campos obligatorios", ErrPrecondicionFallida)
		}
		if !in.DeclaracionAceptada {
			return estado, fmt.Errorf("%w: debe aceptar la declaración jurada", ErrPrecondicionFallida)
		}
		return model.EstadoCompletada, nil
	default:
		return estado, fmt.Errorf("%w: estado desconocido %q", ErrTransicionInvalida, estado)
	}
}

// Reopen validates completed → pending (admin only at the call site).
// Reopening an already pending ficha is an idempotent no-op.
func Reopen(estado string) (string, error) {
	switch estado {
	case model.EstadoCompletada, model.EstadoPendiente:
		return model.EstadoPendiente, nil
	default:
		return estado, fmt.Errorf("%w: estado desconocido %q", ErrTransicionInvalida, estado)
	}
}

// AdminUnlock moves locked → unlocked. On a completed document it is an
// explicit no-op: only AdminReset may leave "completed".
func AdminUnlock(estados model.DocStates, clave string) (Resultado, error) {
	actual, err := estadoDe(estados, clave)
	if err != nil {
		return Resultado{}, err
	}
	switch actual.Status {
	case StatusCompletado:
		return Resultado{DocStates: estados.Clone(), Mensaje: Etiqueta(clave) + " ya está completado; sin cambios"}, nil
	case StatusDesbloqueado:
		return Resultado{DocStates: estados.Clone(), Mensaje: Etiqueta(clave) + " ya estaba desbloqueado"}, nil
	default:
		nuevo := estados.Clone()
		nuevo[clave] = model.DocState{Status: StatusDesbloqueado}
		return Resultado{DocStates: nuevo, Mensaje: Etiqueta(clave) + " desbloqueado"}, nil
	}
}

// AdminLock moves unlocked → locked. Like AdminUnlock, it is an explicit
// no-op on a completed document.
func AdminLock(estados model.DocStates, clave string) (Resultado, error) {
	actual, err := estadoDe(estados, clave)
	if err != nil {
		return Resultado{}, err
	}
	switch actual.Status {
	case StatusCompletado:
		return Resultado{DocStates: estados.Clone(), Mensaje: Etiqueta(clave) + " ya está completado; sin cambios"}, nil
	case StatusBloqueado:
		return Resultado{DocStates: estados.Clone(), Mensaje: Etiqueta(clave) + " ya estaba bloqueado"}, nil
	default:
		nuevo := estados.Clone()
		nuevo[clave] = model.DocState{Status: StatusBloqueado}
		return Resultado{DocStates: nuevo, Mensaje: Etiqueta(clave) + " bloqueado"}, nil
	}
}

// WorkerComplete moves unlocked → completed, recording the signed payload and
// the completion timestamp. Completing a locked document is an invalid
// transition (never silently ignored); re-completing is rejected the same way.
func WorkerComplete(estados model.DocStates, clave string, payload map[string]any, ahora time.Time) (Resultado, error) {
	actual, err := estadoDe(estados, clave)
	if err != nil {
		return Resultado{}, err
	}
	switch actual.Status {
	case StatusBloqueado:
		return Resultado{}, fmt.Errorf("%w: %s está bloqueado", ErrTransicionInvalida, Etiqueta(clave))
	case StatusCompletado:
		return Resultado{}, fmt.Errorf("%w: %s ya fue completado", ErrTransicionInvalida, Etiqueta(clave))
	}
	if len(payload) == 0 {
		return Resultado{}, fmt.Errorf("%w: falta el contenido firmado de %s", ErrPrecondicionFallida, Etiqueta(clave))
	}

	nuevo := estados.Clone()
	ts := ahora.UTC()
	nuevo[clave] = model.DocState{Status: StatusCompletado, Data: payload, CompletedAt: &ts}
	return Resultado{DocStates: nuevo, Mensaje: Etiqueta(clave) + " completado"}, nil
}

// AdminReset moves completed → locked, clearing the payload and the timestamp.
// This is irreversible data loss: the HTTP layer requires an explicit
// confirmation before calling — the engine itself does not gate on it.
func AdminReset(estados model.DocStates, clave string) (Resultado, error) {
	actual, err := estadoDe(estados, clave)
	if err != nil {
		return Resultado{}, err
	}
	if actual.Status != StatusCompletado {
		return Resultado{}, fmt.Errorf("%w: %s no está completado", ErrTransicionInvalida, Etiqueta(clave))
	}
	nuevo := estados.Clone()
	nuevo[clave] = model.DocState{Status: StatusBloqueado}
	return Resultado{DocStates: nuevo, Mensaje: Etiqueta(clave) + " reiniciado y bloqueado"}, nil
}

func estadoDe(estados model.DocStates, clave string) (model.DocState, error) {
	st, ok := estados[clave]
	if !ok {
		return model.DocState{}, fmt.Errorf("%w: documento desconocido %q", ErrTransicionInvalida, clave)
	}
	return st, nil
}
