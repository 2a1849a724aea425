// Package notify turns engine-detected transitions into user-visible signals.
// It is purely reactive: the emitter holds no state and its failures are
// swallowed — a lost toast or a blocked sound is never a correctness problem.
package notify

// Tipos de notificacion.
const (
	TipoSuccess = "success"
	TipoError   = "error"
	TipoInfo    = "info"
)

// Notificacion is one toast pushed to the open sessions. Sonido asks the
// client to play the alert sound; the client only honors it when the profile
// preference (SonidoAlertas) is enabled, and playback failures stay silent.
type Notificacion struct {
	Tipo    string `json:"tipo"`
	Titulo  string `json:"titulo"`
	Mensaje string `json:"mensaje"`
	FichaID string `json:"ficha_id,omitempty"`
	Sonido  bool   `json:"sonido,omitempty"`
}

// Emitter delivers notifications to whoever is listening. Implementations
// must never return an error and never panic.
type Emitter interface {
	Emitir(n Notificacion)
}

// Descartar is a no-op emitter for tests and for running without realtime.
type Descartar struct{}

func (Descartar) Emitir(Notificacion) {}
