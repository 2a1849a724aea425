package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/notify"
)

const escrituraTimeout = 5 * time.Second

// Frame types pushed to clients.
const (
	frameEvento        = "evento"
	frameNotificacion  = "notificacion"
	frameCerrarDetalle = "cerrar_detalle"
)

type frame struct {
	Type         string               `json:"type"`
	Evento       *Evento              `json:"evento,omitempty"`
	Notificacion *notify.Notificacion `json:"notificacion,omitempty"`
	FichaID      string               `json:"ficha_id,omitempty"`
}

// frameEntrante is what clients may send: currently only detail-view watch
// registration ({"type":"watch","ficha_id":"..."}; empty id = view closed).
type frameEntrante struct {
	Type    string `json:"type"`
	FichaID string `json:"ficha_id"`
}

// sesion is one connected browser tab.
type sesion struct {
	conn     *websocket.Conn
	perfilID uuid.UUID
	rol      string
	// fichaID scopes an obrero session to its own record; Nil for admins.
	fichaID uuid.UUID
	// detalle is the record id whose detail view this session has open.
	detalle string
}

// Hub fans change events and notifications out to every open session.
// Admin sessions see the whole table; obrero sessions only their own ficha.
// It implements both Vistas (for the Controller) and notify.Emitter.
type Hub struct {
	mu       sync.RWMutex
	sesiones map[*sesion]struct{}
}

func NewHub() *Hub {
	return &Hub{sesiones: make(map[*sesion]struct{})}
}

// Atender upgrades the request and serves the session until the client goes
// away. The read loop only processes watch frames; everything else flows
// server → client.
func (h *Hub) Atender(ctx context.Context, conn *websocket.Conn, perfilID uuid.UUID, rol string, fichaID uuid.UUID) {
	s := &sesion{conn: conn, perfilID: perfilID, rol: rol, fichaID: fichaID}

	h.mu.Lock()
	h.sesiones[s] = struct{}{}
	total := len(h.sesiones)
	h.mu.Unlock()
	log.Debug().Str("rol", rol).Int("sesiones", total).Msg("realtime: sesion conectada")

	defer func() {
		h.mu.Lock()
		delete(h.sesiones, s)
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var in frameEntrante
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return // client closed or ctx cancelled
		}
		if in.Type == "watch" {
			h.mu.Lock()
			s.detalle = in.FichaID
			h.mu.Unlock()
		}
	}
}

// Difundir sends a change event to every session allowed to see the record.
func (h *Hub) Difundir(ev Evento) {
	id, perfilID := identidadDe(ev)
	h.enviarA(func(s *sesion) bool {
		if s.rol == model.RolAdmin {
			return true
		}
		return s.perfilID == perfilID || (s.fichaID != uuid.Nil && s.fichaID.String() == id)
	}, frame{Type: frameEvento, Evento: &ev})
}

// Emitir implements notify.Emitter: toasts go to every admin session plus the
// owner of the affected ficha. Failures are swallowed — best-effort channel.
func (h *Hub) Emitir(n notify.Notificacion) {
	h.enviarA(func(s *sesion) bool {
		if s.rol == model.RolAdmin {
			return true
		}
		return s.fichaID != uuid.Nil && s.fichaID.String() == n.FichaID
	}, frame{Type: frameNotificacion, Notificacion: &n})
}

// CerrarDetalle tells sessions with a detail view open on the given record to
// close it (the record was deleted). No-op when nobody is watching.
func (h *Hub) CerrarDetalle(fichaID string) {
	h.enviarA(func(s *sesion) bool {
		return s.detalle != "" && s.detalle == fichaID
	}, frame{Type: frameCerrarDetalle, FichaID: fichaID})
}

func (h *Hub) enviarA(filtro func(*sesion) bool, f frame) {
	h.mu.RLock()
	destinos := make([]*sesion, 0, len(h.sesiones))
	for s := range h.sesiones {
		if filtro(s) {
			destinos = append(destinos, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range destinos {
		ctx, cancel := context.WithTimeout(context.Background(), escrituraTimeout)
		err := wsjson.Write(ctx, s.conn, f)
		cancel()
		if err != nil {
			// Dead session: drop it; the client reconnects on its own.
			h.mu.Lock()
			delete(h.sesiones, s)
			h.mu.Unlock()
			_ = s.conn.Close(websocket.StatusGoingAway, "write failed")
		}
	}
}

func identidadDe(ev Evento) (fichaID string, perfilID uuid.UUID) {
	switch {
	case ev.Nuevo != nil:
		return ev.Nuevo.ID.String(), ev.Nuevo.PerfilID
	case ev.Viejo != nil:
		return ev.Viejo.ID.String(), ev.Viejo.PerfilID
	default:
		return "", uuid.Nil
	}
}
