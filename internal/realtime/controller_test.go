package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/notify"
)

type emisorCapturado struct {
	emitidas []notify.Notificacion
}

func (e *emisorCapturado) Emitir(n notify.Notificacion) { e.emitidas = append(e.emitidas, n) }

type vistasCapturadas struct {
	difundidos []Evento
	cerrados   []string
}

func (v *vistasCapturadas) Difundir(ev Evento)        { v.difundidos = append(v.difundidos, ev) }
func (v *vistasCapturadas) CerrarDetalle(id string)   { v.cerrados = append(v.cerrados, id) }

func fichaBase(t *testing.T) *model.Ficha {
	t.Helper()
	return &model.Ficha{
		ID:        uuid.New(),
		PerfilID:  uuid.New(),
		DNI:       "45678901",
		Nombres:   "Juan",
		Apellidos: "Quispe",
		Estado:    model.EstadoPendiente,
		DocStates: docstate.NuevosDocStates(),
		UpdatedAt: time.Now().Truncate(time.Second),
	}
}

func conDocCompletado(f *model.Ficha, clave string) *model.Ficha {
	cp := *f
	cp.DocStates = f.DocStates.Clone()
	ts := f.UpdatedAt.Add(time.Minute)
	cp.DocStates[clave] = model.DocState{
		Status:      docstate.StatusCompletado,
		Data:        map[string]any{"firma": "x"},
		CompletedAt: &ts,
	}
	cp.UpdatedAt = ts
	return &cp
}

func TestDocumentoRecienCompletadoNotificaUnaVez(t *testing.T) {
	em := &emisorCapturado{}
	ctrl := NewController(em, SinVistas{})

	vieja := fichaBase(t)
	ctrl.Aplicar(Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: vieja})
	require.Empty(t, em.emitidas)

	nueva := conDocCompletado(vieja, "risst")
	ev := Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: nueva, Viejo: vieja}
	ctrl.Aplicar(ev)

	require.Len(t, em.emitidas, 1)
	assert.Equal(t, notify.TipoSuccess, em.emitidas[0].Tipo)
	assert.Contains(t, em.emitidas[0].Mensaje, "Juan Quispe")
	assert.Contains(t, em.emitidas[0].Mensaje, docstate.Etiqueta("risst"))
	assert.False(t, em.emitidas[0].Sonido)

	// Entrega duplicada (at-least-once) — ni cache ni notificacion cambian
	ctrl.Aplicar(ev)
	assert.Len(t, em.emitidas, 1)
}

func TestEventosDuplicadosNoRedifunden(t *testing.T) {
	em := &emisorCapturado{}
	vs := &vistasCapturadas{}
	ctrl := NewController(em, vs)

	f := fichaBase(t)
	ev := Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: f}
	ctrl.Aplicar(ev)
	ctrl.Aplicar(ev)
	ctrl.Aplicar(ev)

	assert.Len(t, vs.difundidos, 1)
}

func TestInsercionCompletadaSuenaAlerta(t *testing.T) {
	em := &emisorCapturado{}
	ctrl := NewController(em, SinVistas{})

	f := fichaBase(t)
	f.Estado = model.EstadoCompletada
	ctrl.Aplicar(Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: f})

	require.Len(t, em.emitidas, 1)
	assert.True(t, em.emitidas[0].Sonido)
	assert.Equal(t, "Ficha completada", em.emitidas[0].Titulo)
}

func TestEnvioDeFichaNotificaConSonido(t *testing.T) {
	em := &emisorCapturado{}
	ctrl := NewController(em, SinVistas{})

	vieja := fichaBase(t)
	ctrl.Aplicar(Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: vieja})

	nueva := *vieja
	nueva.Estado = model.EstadoCompletada
	nueva.UpdatedAt = vieja.UpdatedAt.Add(time.Minute)
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: &nueva, Viejo: vieja})

	require.Len(t, em.emitidas, 1)
	assert.True(t, em.emitidas[0].Sonido)
}

func TestReaperturaNotificaInfo(t *testing.T) {
	em := &emisorCapturado{}
	ctrl := NewController(em, SinVistas{})

	vieja := fichaBase(t)
	vieja.Estado = model.EstadoCompletada
	ctrl.Aplicar(Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: vieja})
	em.emitidas = nil

	nueva := *vieja
	nueva.Estado = model.EstadoPendiente
	nueva.UpdatedAt = vieja.UpdatedAt.Add(time.Minute)
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: &nueva, Viejo: vieja})

	require.Len(t, em.emitidas, 1)
	assert.Equal(t, notify.TipoInfo, em.emitidas[0].Tipo)
	assert.Equal(t, "Ficha reabierta", em.emitidas[0].Titulo)
}

func TestEliminacionCierraDetalleYLimpiaCache(t *testing.T) {
	em := &emisorCapturado{}
	vs := &vistasCapturadas{}
	ctrl := NewController(em, vs)

	f := fichaBase(t)
	ctrl.Aplicar(Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: f})
	ctrl.Aplicar(Evento{Kind: KindDelete, Tabla: "fichas", Viejo: f})

	require.Len(t, vs.cerrados, 1)
	assert.Equal(t, f.ID.String(), vs.cerrados[0])

	// Sin vista abierta la eliminacion repetida tampoco falla
	ctrl.Aplicar(Evento{Kind: KindDelete, Tabla: "fichas", Viejo: f})
	assert.Len(t, vs.cerrados, 2)

	// Un update posterior parte de cache fria y usa el snapshot del evento
	nueva := conDocCompletado(f, "epp")
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: nueva, Viejo: f})
	assert.Len(t, em.emitidas, 1)
}

func TestUpdateConCacheFriaUsaSnapshotViejoDelEvento(t *testing.T) {
	em := &emisorCapturado{}
	ctrl := NewController(em, SinVistas{})

	vieja := fichaBase(t)
	nueva := conDocCompletado(vieja, "iperc")
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: nueva, Viejo: vieja})

	require.Len(t, em.emitidas, 1)
	assert.Contains(t, em.emitidas[0].Mensaje, docstate.Etiqueta("iperc"))
}

func TestUltimoEventoGanaPorRegistro(t *testing.T) {
	em := &emisorCapturado{}
	ctrl := NewController(em, SinVistas{})

	f := fichaBase(t)
	ctrl.Aplicar(Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: f})

	v1 := conDocCompletado(f, "risst")
	v2 := conDocCompletado(v1, "epp")
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: v1, Viejo: f})
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: v2, Viejo: v1})

	// Una notificacion por cada documento nuevo, en orden de llegada
	require.Len(t, em.emitidas, 2)
	assert.Contains(t, em.emitidas[0].Mensaje, docstate.Etiqueta("risst"))
	assert.Contains(t, em.emitidas[1].Mensaje, docstate.Etiqueta("epp"))

	// Re-aplicar el evento v1 (retrasado/duplicado con snapshot distinto al
	// cacheado) re-escribe cache con last-write-wins pero no re-notifica risst
	ctrl.Aplicar(Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: v2, Viejo: v1})
	assert.Len(t, em.emitidas, 2)
}
