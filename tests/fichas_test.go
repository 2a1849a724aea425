package tests

// fichas_test.go
// Service-level tests for the wizard, the submit/reopen cycle and the admin
// operations, running against in-memory repository stubs.

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/service"
)

// ── In-memory FichaRepository stub ───────────────────────────────────────────

type stubFichaRepo struct {
	mu     sync.Mutex
	fichas map[uuid.UUID]*model.Ficha
	// failDelete simulates per-record delete failures for the bulk path.
	failDelete map[uuid.UUID]bool
}

func newStubFichaRepo() *stubFichaRepo {
	return &stubFichaRepo{
		fichas:     make(map[uuid.UUID]*model.Ficha),
		failDelete: make(map[uuid.UUID]bool),
	}
}

func (r *stubFichaRepo) Create(_ context.Context, f *model.Ficha) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	cloned := clonarFicha(f)
	r.fichas[f.ID] = cloned
	return nil
}

func (r *stubFichaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ficha, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fichas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return clonarFicha(f), nil
}

func (r *stubFichaRepo) FindByPerfil(_ context.Context, perfilID uuid.UUID) (*model.Ficha, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fichas {
		if f.PerfilID == perfilID {
			return clonarFicha(f), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFichaRepo) Upsert(_ context.Context, f *model.Ficha) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existente := range r.fichas {
		if existente.PerfilID == f.PerfilID {
			f.ID = id
			f.UpdatedAt = time.Now()
			r.fichas[id] = clonarFicha(f)
			return nil
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	r.fichas[f.ID] = clonarFicha(f)
	return nil
}

func (r *stubFichaRepo) List(_ context.Context, filter dto.FichaFilter) ([]model.Ficha, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Ficha
	for _, f := range r.fichas {
		if filter.Estado != "" && f.Estado != filter.Estado {
			continue
		}
		out = append(out, *clonarFicha(f))
	}
	return out, int64(len(out)), nil
}

func (r *stubFichaRepo) Update(_ context.Context, f *model.Ficha) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fichas[f.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.UpdatedAt = time.Now()
	r.fichas[f.ID] = clonarFicha(f)
	return nil
}

func (r *stubFichaRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete[id] {
		return assert.AnError
	}
	if _, ok := r.fichas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.fichas, id)
	return nil
}

var _ repository.FichaRepository = (*stubFichaRepo)(nil)

func clonarFicha(f *model.Ficha) *model.Ficha {
	cp := *f
	cp.DocStates = f.DocStates.Clone()
	return &cp
}

// ── Publisher spy ────────────────────────────────────────────────────────────

type publisherSpy struct {
	mu       sync.Mutex
	inserts  int
	updates  int
	deletes  int
	ultimo   *model.Ficha
	ultViejo *model.Ficha
}

func (p *publisherSpy) FichaInsertada(_ context.Context, nueva *model.Ficha) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inserts++
	p.ultimo = nueva
}

func (p *publisherSpy) FichaActualizada(_ context.Context, vieja, nueva *model.Ficha) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.ultViejo = vieja
	p.ultimo = nueva
}

func (p *publisherSpy) FichaEliminada(_ context.Context, vieja *model.Ficha) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes++
	p.ultViejo = vieja
}

var _ realtime.Publisher = (*publisherSpy)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func ptr[T any](v T) *T { return &v }

func fichaCompleta(t *testing.T, repo *stubFichaRepo, svc service.FichaService, perfilID uuid.UUID) *dto.FichaResponse {
	t.Helper()
	_, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{
		Nombres:   "Juan",
		Apellidos: "Quispe",
		Direccion: ptr("Av. Los Pinos 123"),
		Telefono:  ptr("987654321"),
	})
	require.NoError(t, err)

	fecha := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err = svc.GuardarPasoLaboral(context.Background(), perfilID, dto.PasoLaboralRequest{
		Cargo:          ptr("Operario de obra"),
		Categoria:      ptr("operario"),
		FechaIngreso:   &fecha,
		SistemaPension: ptr("ONP"),
	})
	require.NoError(t, err)

	resp, err := svc.Finalizar(context.Background(), perfilID, dto.FinalizarRequest{DeclaracionAceptada: true})
	require.NoError(t, err)
	require.Equal(t, model.EstadoCompletada, resp.Estado)
	return resp
}

// ── Wizard ───────────────────────────────────────────────────────────────────

func TestGuardarPaso_CreaFichaConDocumentosBloqueados(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()

	resp, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{
		Nombres:   "Juan",
		Apellidos: "Quispe",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, resp.Estado)
	assert.Equal(t, "45678901", resp.DNI)

	// todos los documentos legales arrancan bloqueados
	require.Len(t, resp.DocStates, len(docstate.Claves))
	for clave, st := range resp.DocStates {
		assert.Equal(t, docstate.StatusBloqueado, st.Status, clave)
	}
}

func TestGuardarPaso_AcumulaSnapshotsParciales(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()

	_, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{
		Nombres:   "Rosa",
		Apellidos: "Mendoza",
		Direccion: ptr("Jr. Arica 500"),
	})
	require.NoError(t, err)

	resp, err := svc.GuardarPasoFamilia(context.Background(), perfilID, dto.PasoFamiliaRequest{
		Hijos: model.Hijos{{Nombres: "Luz", Apellidos: "Mendoza"}},
	})
	require.NoError(t, err)

	// el paso familiar no borra lo personal
	assert.Equal(t, "Rosa", resp.Nombres)
	require.NotNil(t, resp.Direccion)
	assert.Equal(t, "Jr. Arica 500", *resp.Direccion)
	require.Len(t, resp.Hijos, 1)
}

func TestGuardarPaso_SoloUnaFichaPorPerfil(t *testing.T) {
	repo := newStubFichaRepo()
	spy := &publisherSpy{}
	svc := service.NewFichaService(repo, spy, nil)
	perfilID := uuid.New()

	primera, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{Nombres: "A", Apellidos: "B"})
	require.NoError(t, err)
	segunda, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{Nombres: "A2", Apellidos: "B2"})
	require.NoError(t, err)

	assert.Equal(t, primera.ID, segunda.ID)
	assert.Equal(t, 1, spy.inserts)
	assert.Equal(t, 1, spy.updates)
}

func TestGuardarPaso_FichaCompletadaEsSoloLectura(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()
	fichaCompleta(t, repo, svc, perfilID)

	_, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{Nombres: "X", Apellidos: "Y"})
	assert.ErrorIs(t, err, service.ErrFichaEnviada)
}

// ── Finalizar / Reabrir ──────────────────────────────────────────────────────

func TestFinalizar_RequiereCamposObligatorios(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()

	_, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{Nombres: "Juan", Apellidos: "Quispe"})
	require.NoError(t, err)

	// faltan datos laborales
	_, err = svc.Finalizar(context.Background(), perfilID, dto.FinalizarRequest{DeclaracionAceptada: true})
	assert.ErrorIs(t, err, docstate.ErrPrecondicionFallida)

	ficha, _ := repo.FindByPerfil(context.Background(), perfilID)
	assert.Equal(t, model.EstadoPendiente, ficha.Estado)
}

func TestFinalizar_RequiereDeclaracionAceptada(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()

	_, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{
		Nombres: "Juan", Apellidos: "Quispe",
		Direccion: ptr("Av. Sol 1"), Telefono: ptr("999"),
	})
	require.NoError(t, err)
	fecha := time.Now()
	_, err = svc.GuardarPasoLaboral(context.Background(), perfilID, dto.PasoLaboralRequest{
		Cargo: ptr("Peon"), Categoria: ptr("peon"), FechaIngreso: &fecha, SistemaPension: ptr("AFP"),
	})
	require.NoError(t, err)

	_, err = svc.Finalizar(context.Background(), perfilID, dto.FinalizarRequest{DeclaracionAceptada: false})
	assert.ErrorIs(t, err, docstate.ErrPrecondicionFallida)
}

func TestFinalizar_TransicionYDobleEnvio(t *testing.T) {
	repo := newStubFichaRepo()
	spy := &publisherSpy{}
	svc := service.NewFichaService(repo, spy, nil)
	perfilID := uuid.New()

	resp := fichaCompleta(t, repo, svc, perfilID)
	assert.True(t, resp.DeclaracionAceptada)
	require.NotNil(t, resp.DeclaracionAceptadaEn)

	// el update del envio salio por el canal realtime
	assert.GreaterOrEqual(t, spy.updates, 1)

	// segundo envio: transicion invalida, nada cambia
	_, err := svc.Finalizar(context.Background(), perfilID, dto.FinalizarRequest{DeclaracionAceptada: true})
	assert.ErrorIs(t, err, docstate.ErrTransicionInvalida)
}

func TestReabrir_DevuelvePendienteYConservaDatos(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()
	enviada := fichaCompleta(t, repo, svc, perfilID)

	fichaID := uuid.MustParse(enviada.ID)
	reabierta, err := svc.Reabrir(context.Background(), fichaID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, reabierta.Estado)
	// los datos y sub-estados sobreviven la reapertura
	assert.Equal(t, "Juan", reabierta.Nombres)
	assert.Len(t, reabierta.DocStates, len(docstate.Claves))

	// reabrir lo ya pendiente es un no-op idempotente
	otraVez, err := svc.Reabrir(context.Background(), fichaID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, otraVez.Estado)
}

// ── SSOMA ────────────────────────────────────────────────────────────────────

func TestCompletarSsoma_SeMarcaUnaSolaVez(t *testing.T) {
	repo := newStubFichaRepo()
	spy := &publisherSpy{}
	svc := service.NewFichaService(repo, spy, nil)
	perfilID := uuid.New()

	_, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{Nombres: "J", Apellidos: "Q"})
	require.NoError(t, err)

	primera, err := svc.CompletarSsoma(context.Background(), perfilID)
	require.NoError(t, err)
	assert.True(t, primera.SsomaCompletada)
	require.NotNil(t, primera.SsomaCompletadaEn)
	marca := *primera.SsomaCompletadaEn
	updatesTrasPrimera := spy.updates

	// la segunda llamada no toca nada: ni timestamp ni evento
	segunda, err := svc.CompletarSsoma(context.Background(), perfilID)
	require.NoError(t, err)
	assert.True(t, segunda.SsomaCompletada)
	assert.Equal(t, marca, *segunda.SsomaCompletadaEn)
	assert.Equal(t, updatesTrasPrimera, spy.updates)
}

// ── Admin ────────────────────────────────────────────────────────────────────

func TestActualizarCampos_SoloAplicaCamposPresentes(t *testing.T) {
	repo := newStubFichaRepo()
	svc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()
	enviada := fichaCompleta(t, repo, svc, perfilID)

	resp, err := svc.ActualizarCampos(context.Background(), uuid.MustParse(enviada.ID), dto.ActualizarFichaRequest{
		Telefono: ptr("111222333"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Telefono)
	assert.Equal(t, "111222333", *resp.Telefono)
	// lo no enviado queda intacto
	assert.Equal(t, "Juan", resp.Nombres)
	require.NotNil(t, resp.Cargo)
	assert.Equal(t, "Operario de obra", *resp.Cargo)
}

func TestEliminarMasivo_FalloParcialNoAborta(t *testing.T) {
	repo := newStubFichaRepo()
	spy := &publisherSpy{}
	svc := service.NewFichaService(repo, spy, nil)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		perfilID := uuid.New()
		resp, err := svc.GuardarPasoPersonal(context.Background(), perfilID, "4567890"+string(rune('1'+i)), dto.PasoPersonalRequest{Nombres: "N", Apellidos: "A"})
		require.NoError(t, err)
		ids = append(ids, uuid.MustParse(resp.ID))
	}
	repo.failDelete[ids[1]] = true
	ids = append(ids, uuid.New()) // inexistente

	resultado, err := svc.EliminarMasivo(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Exitosos)
	assert.Equal(t, 2, resultado.Errores)
	assert.Len(t, resultado.Detalles, 2)
	// solo los borrados reales emiten el evento delete
	assert.Equal(t, 2, spy.deletes)
}
