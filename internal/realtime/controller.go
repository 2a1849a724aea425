package realtime

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/notify"
)

const (
	cacheMaxFichas = 5000
	cacheTTL       = 12 * time.Hour
)

// Vistas is what the Controller needs from the session layer: broadcast a
// change to interested sessions and force-close any detail view open on a
// deleted record. The Hub implements it; tests plug a fake.
type Vistas interface {
	Difundir(ev Evento)
	CerrarDetalle(fichaID string)
}

// SinVistas is a no-op Vistas for tests.
type SinVistas struct{}

func (SinVistas) Difundir(Evento)      {}
func (SinVistas) CerrarDetalle(string) {}

// Controller applies change events to the local snapshot cache, decides which
// transitions are genuinely new, and drives notifications plus view updates.
// Events for the same ficha are applied in arrival order (single subscriber
// goroutine); a later event for the same id always wins.
type Controller struct {
	mu      sync.Mutex
	cache   *ccache.Cache[*model.Ficha]
	emitter notify.Emitter
	vistas  Vistas
}

func NewController(emitter notify.Emitter, vistas Vistas) *Controller {
	if emitter == nil {
		emitter = notify.Descartar{}
	}
	if vistas == nil {
		vistas = SinVistas{}
	}
	return &Controller{
		cache:   ccache.New(ccache.Configure[*model.Ficha]().MaxSize(cacheMaxFichas)),
		emitter: emitter,
		vistas:  vistas,
	}
}

// Aplicar processes one change event. It is idempotent under at-least-once
// delivery: a duplicate whose new snapshot equals the cached one produces no
// cache change, no broadcast, and no notification.
func (c *Controller) Aplicar(ev Evento) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case KindDelete:
		if ev.Viejo == nil {
			return
		}
		id := ev.Viejo.ID.String()
		c.cache.Delete(id)
		// Must not throw when no detail view is open on this record.
		c.vistas.CerrarDetalle(id)
		c.vistas.Difundir(ev)

	case KindInsert:
		if ev.Nuevo == nil {
			return
		}
		id := ev.Nuevo.ID.String()
		if prev := c.cacheada(id); prev != nil && instantaneaIgual(prev, ev.Nuevo) {
			return // duplicate delivery
		}
		c.cache.Set(id, ev.Nuevo, cacheTTL)
		// A record arriving already completed drives the audible alert on the
		// admin bulk list (e.g. mass import of pre-filled fichas).
		if ev.Nuevo.Estado == model.EstadoCompletada {
			c.emitter.Emitir(notify.Notificacion{
				Tipo:    notify.TipoSuccess,
				Titulo:  "Ficha completada",
				Mensaje: nombreDe(ev.Nuevo) + " registró su ficha como completada",
				FichaID: id,
				Sonido:  true,
			})
		}
		c.vistas.Difundir(ev)

	case KindUpdate:
		if ev.Nuevo == nil {
			return
		}
		id := ev.Nuevo.ID.String()
		viejo := c.cacheada(id)
		if viejo != nil && instantaneaIgual(viejo, ev.Nuevo) {
			return // duplicate delivery
		}
		if viejo == nil {
			viejo = ev.Viejo // cold cache — fall back to the event's old snapshot
		}
		c.cache.Set(id, ev.Nuevo, cacheTTL)
		c.notificarTransiciones(viejo, ev.Nuevo)
		c.vistas.Difundir(ev)
	}
}

// cacheada returns the cached snapshot or nil.
func (c *Controller) cacheada(id string) *model.Ficha {
	item := c.cache.Get(id)
	if item == nil || item.Expired() {
		return nil
	}
	return item.Value()
}

// notificarTransiciones diffs the old and new snapshots and emits exactly one
// notification per genuinely new transition.
func (c *Controller) notificarTransiciones(viejo, nuevo *model.Ficha) {
	id := nuevo.ID.String()

	// Documentos recien completados: keys present in both snapshots whose
	// status moved to "completed".
	if viejo != nil {
		for clave, st := range nuevo.DocStates {
			if st.Status != docstate.StatusCompletado {
				continue
			}
			anterior, ok := viejo.DocStates[clave]
			if !ok || anterior.Status == docstate.StatusCompletado {
				continue
			}
			c.emitter.Emitir(notify.Notificacion{
				Tipo:    notify.TipoSuccess,
				Titulo:  "Documento completado",
				Mensaje: nombreDe(nuevo) + " completó " + docstate.Etiqueta(clave),
				FichaID: id,
			})
		}
	}

	// Transicion global pending → completed.
	if nuevo.Estado == model.EstadoCompletada && (viejo == nil || viejo.Estado != model.EstadoCompletada) {
		c.emitter.Emitir(notify.Notificacion{
			Tipo:    notify.TipoSuccess,
			Titulo:  "Ficha completada",
			Mensaje: nombreDe(nuevo) + " envió su ficha",
			FichaID: id,
			Sonido:  true,
		})
	}

	// Reapertura administrativa — el portal del obrero vuelve al asistente.
	if viejo != nil && viejo.Estado == model.EstadoCompletada && nuevo.Estado == model.EstadoPendiente {
		c.emitter.Emitir(notify.Notificacion{
			Tipo:    notify.TipoInfo,
			Titulo:  "Ficha reabierta",
			Mensaje: "La ficha de " + nombreDe(nuevo) + " fue reabierta para edición",
			FichaID: id,
		})
	}
}

// instantaneaIgual reports whether two snapshots represent the same persisted
// version: same estado, same update timestamp, same per-document sub-states.
func instantaneaIgual(a, b *model.Ficha) bool {
	if a.Estado != b.Estado || !a.UpdatedAt.Equal(b.UpdatedAt) {
		return false
	}
	if len(a.DocStates) != len(b.DocStates) {
		return false
	}
	for clave, sa := range a.DocStates {
		sb, ok := b.DocStates[clave]
		if !ok || sa.Status != sb.Status {
			return false
		}
		switch {
		case sa.CompletedAt == nil && sb.CompletedAt != nil,
			sa.CompletedAt != nil && sb.CompletedAt == nil:
			return false
		case sa.CompletedAt != nil && !sa.CompletedAt.Equal(*sb.CompletedAt):
			return false
		}
	}
	return true
}

func nombreDe(f *model.Ficha) string {
	if f.Nombres == "" && f.Apellidos == "" {
		return "DNI " + f.DNI
	}
	return f.Nombres + " " + f.Apellidos
}
