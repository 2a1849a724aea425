package tests

// importacion_test.go
// Bulk import: batches, per-row failure isolation and the obrero defaults of
// every created profile.

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/service"
)

// ── In-memory PerfilRepository stub ──────────────────────────────────────────

type stubPerfilRepo struct {
	mu       sync.Mutex
	perfiles map[uuid.UUID]*model.Perfil
	porDNI   map[string]uuid.UUID
}

func newStubPerfilRepo() *stubPerfilRepo {
	return &stubPerfilRepo{
		perfiles: make(map[uuid.UUID]*model.Perfil),
		porDNI:   make(map[string]uuid.UUID),
	}
}

func (r *stubPerfilRepo) Create(_ context.Context, p *model.Perfil) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.porDNI[p.DNI]; ok {
		return gorm.ErrDuplicatedKey
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cloned := *p
	r.perfiles[p.ID] = &cloned
	r.porDNI[p.DNI] = p.ID
	return nil
}

func (r *stubPerfilRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Perfil, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.perfiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubPerfilRepo) FindByDNI(_ context.Context, dni string) (*model.Perfil, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.porDNI[dni]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *r.perfiles[id]
	return &cloned, nil
}

func (r *stubPerfilRepo) Update(_ context.Context, p *model.Perfil) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *p
	r.perfiles[p.ID] = &cloned
	return nil
}

var _ repository.PerfilRepository = (*stubPerfilRepo)(nil)

// ── Tests ────────────────────────────────────────────────────────────────────

func TestImportar_CreaPerfilesYFichas(t *testing.T) {
	perfiles := newStubPerfilRepo()
	fichas := newStubFichaRepo()
	spy := &publisherSpy{}
	svc := service.NewImportacionService(perfiles, fichas, spy)

	req := dto.ImportarRequest{Empleados: []dto.EmpleadoImport{
		{DNI: "41111111", Nombres: "Pedro", Apellidos: "Huaman", Cargo: ptr("Oficial"), Categoria: ptr("oficial")},
		{DNI: "42222222", Nombres: "Maria", Apellidos: "Flores"},
	}}

	resultado, err := svc.Importar(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Exitosos)
	assert.Equal(t, 0, resultado.Errores)
	assert.Equal(t, 2, spy.inserts)

	perfil, err := perfiles.FindByDNI(context.Background(), "41111111")
	require.NoError(t, err)
	assert.Equal(t, model.RolObrero, perfil.Rol)
	assert.True(t, perfil.Activo)
	// la contraseña inicial es el propio DNI
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(perfil.PasswordHash), []byte("41111111")))

	ficha, err := fichas.FindByPerfil(context.Background(), perfil.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, ficha.Estado)
	require.NotNil(t, ficha.Cargo)
	assert.Equal(t, "Oficial", *ficha.Cargo)
}

func TestImportar_FilaDuplicadaNoAbortaElResto(t *testing.T) {
	perfiles := newStubPerfilRepo()
	fichas := newStubFichaRepo()
	svc := service.NewImportacionService(perfiles, fichas, &publisherSpy{})

	// el DNI 43333333 ya existe
	require.NoError(t, perfiles.Create(context.Background(), &model.Perfil{
		DNI: "43333333", Nombres: "Ya", Apellidos: "Existe", PasswordHash: "x", Rol: model.RolObrero, Activo: true,
	}))

	req := dto.ImportarRequest{Empleados: []dto.EmpleadoImport{
		{DNI: "43333333", Nombres: "Duplicado", Apellidos: "Duplicado"},
		{DNI: "44444444", Nombres: "Nuevo", Apellidos: "Nuevo"},
	}}

	resultado, err := svc.Importar(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Exitosos)
	assert.Equal(t, 1, resultado.Errores)
	require.Len(t, resultado.Detalles, 1)
	assert.Equal(t, "43333333", resultado.Detalles[0].DNI)

	// el preexistente no fue sobreescrito
	perfil, _ := perfiles.FindByDNI(context.Background(), "43333333")
	assert.Equal(t, "Ya", perfil.Nombres)
}

func TestImportar_LotesGrandesSeProcesanCompletos(t *testing.T) {
	perfiles := newStubPerfilRepo()
	fichas := newStubFichaRepo()
	svc := service.NewImportacionService(perfiles, fichas, &publisherSpy{})

	// 60 filas cruzan varios lotes de 25
	var empleados []dto.EmpleadoImport
	for i := 0; i < 60; i++ {
		empleados = append(empleados, dto.EmpleadoImport{
			DNI:       fmt.Sprintf("5%07d", i),
			Nombres:   "Obrero",
			Apellidos: fmt.Sprintf("Numero%d", i),
		})
	}

	resultado, err := svc.Importar(context.Background(), dto.ImportarRequest{Empleados: empleados})
	require.NoError(t, err)
	assert.Equal(t, 60, resultado.Exitosos)
	assert.Equal(t, 0, resultado.Errores)
}
