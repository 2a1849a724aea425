// Package realtime keeps every open session's view of the ficha table
// consistent with the backing store. Services publish change events to Redis
// after each persist; a per-process subscriber feeds them to the Controller,
// which maintains a local snapshot cache, detects newly-completed documents
// (so duplicates never re-fire notifications), and fans out to websocket
// sessions through the Hub.
package realtime

import "github.com/C3S4R18/ruag-app-web-sub000/internal/model"

// Event kinds — mirror the change stream of the backing store.
const (
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
)

// CanalFichas is the Redis pub/sub channel for ficha change events.
// One logical channel per table; ordering is guaranteed per record only.
const CanalFichas = "rt:fichas"

// Evento is one change notification. Nuevo/Viejo are full row snapshots;
// Viejo is nil on insert, Nuevo is nil on delete (the id travels in Viejo).
type Evento struct {
	Kind  string       `json:"kind"`
	Tabla string       `json:"tabla"`
	Nuevo *model.Ficha `json:"nuevo,omitempty"`
	Viejo *model.Ficha `json:"viejo,omitempty"`
}
