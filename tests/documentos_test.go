package tests

// documentos_test.go
// Per-document sub-state flow: admin unlock/lock, worker completion and the
// confirmed reset that destroys signed data.

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/service"
)

func prepararFicha(t *testing.T) (*stubFichaRepo, service.DocumentoService, uuid.UUID, uuid.UUID) {
	t.Helper()
	repo := newStubFichaRepo()
	fichaSvc := service.NewFichaService(repo, &publisherSpy{}, nil)
	perfilID := uuid.New()

	resp, err := fichaSvc.GuardarPasoPersonal(context.Background(), perfilID, "45678901", dto.PasoPersonalRequest{Nombres: "Juan", Apellidos: "Quispe"})
	require.NoError(t, err)

	return repo, service.NewDocumentoService(repo, &publisherSpy{}), perfilID, uuid.MustParse(resp.ID)
}

func TestDocumento_FlujoDesbloquearYCompletar(t *testing.T) {
	_, svc, perfilID, fichaID := prepararFicha(t)

	resp, err := svc.Desbloquear(context.Background(), fichaID, "risst")
	require.NoError(t, err)
	assert.Equal(t, docstate.StatusDesbloqueado, resp.DocStates["risst"].Status)

	firmado := map[string]any{"firmado": true, "version": "2026-01"}
	resp, err = svc.Completar(context.Background(), perfilID, "risst", dto.CompletarDocumentoRequest{Datos: firmado})
	require.NoError(t, err)

	st := resp.DocStates["risst"]
	assert.Equal(t, docstate.StatusCompletado, st.Status)
	require.NotNil(t, st.CompletedAt)
	assert.Equal(t, true, st.Data["firmado"])

	// los demas documentos no se tocaron
	assert.Equal(t, docstate.StatusBloqueado, resp.DocStates["iperc"].Status)
}

func TestDocumento_CompletarBloqueadoEsRechazado(t *testing.T) {
	_, svc, perfilID, _ := prepararFicha(t)

	_, err := svc.Completar(context.Background(), perfilID, "epp", dto.CompletarDocumentoRequest{Datos: map[string]any{"ok": true}})
	assert.ErrorIs(t, err, docstate.ErrTransicionInvalida)
}

func TestDocumento_CompletarDosVecesEsRechazado(t *testing.T) {
	_, svc, perfilID, fichaID := prepararFicha(t)

	_, err := svc.Desbloquear(context.Background(), fichaID, "induccion")
	require.NoError(t, err)
	_, err = svc.Completar(context.Background(), perfilID, "induccion", dto.CompletarDocumentoRequest{Datos: map[string]any{"ok": true}})
	require.NoError(t, err)

	_, err = svc.Completar(context.Background(), perfilID, "induccion", dto.CompletarDocumentoRequest{Datos: map[string]any{"ok": true}})
	assert.ErrorIs(t, err, docstate.ErrTransicionInvalida)
}

func TestDocumento_PayloadVacioFallaPrecondicion(t *testing.T) {
	_, svc, perfilID, fichaID := prepararFicha(t)

	_, err := svc.Desbloquear(context.Background(), fichaID, "capacitacion")
	require.NoError(t, err)

	_, err = svc.Completar(context.Background(), perfilID, "capacitacion", dto.CompletarDocumentoRequest{Datos: map[string]any{}})
	assert.ErrorIs(t, err, docstate.ErrPrecondicionFallida)
}

func TestDocumento_ToggleSobreCompletadoNoHaceNada(t *testing.T) {
	_, svc, perfilID, fichaID := prepararFicha(t)

	_, err := svc.Desbloquear(context.Background(), fichaID, "acta_derecho")
	require.NoError(t, err)
	_, err = svc.Completar(context.Background(), perfilID, "acta_derecho", dto.CompletarDocumentoRequest{Datos: map[string]any{"ok": true}})
	require.NoError(t, err)

	// bloquear/desbloquear sobre completado: no-op, el estado sobrevive
	resp, err := svc.Bloquear(context.Background(), fichaID, "acta_derecho")
	require.NoError(t, err)
	assert.Equal(t, docstate.StatusCompletado, resp.DocStates["acta_derecho"].Status)

	resp, err = svc.Desbloquear(context.Background(), fichaID, "acta_derecho")
	require.NoError(t, err)
	assert.Equal(t, docstate.StatusCompletado, resp.DocStates["acta_derecho"].Status)
	assert.NotNil(t, resp.DocStates["acta_derecho"].CompletedAt)
}

func TestDocumento_ResetearExigeConfirmacion(t *testing.T) {
	_, svc, perfilID, fichaID := prepararFicha(t)

	_, err := svc.Desbloquear(context.Background(), fichaID, "iperc")
	require.NoError(t, err)
	_, err = svc.Completar(context.Background(), perfilID, "iperc", dto.CompletarDocumentoRequest{Datos: map[string]any{"matriz": "v3"}})
	require.NoError(t, err)

	// sin confirmar: rechazado y nada cambia
	_, err = svc.Resetear(context.Background(), fichaID, "iperc", dto.ResetearDocumentoRequest{Confirmar: false})
	assert.ErrorIs(t, err, service.ErrConfirmacionRequerida)

	// confirmado: vuelve a bloqueado y los datos firmados desaparecen
	resp, err := svc.Resetear(context.Background(), fichaID, "iperc", dto.ResetearDocumentoRequest{Confirmar: true})
	require.NoError(t, err)
	st := resp.DocStates["iperc"]
	assert.Equal(t, docstate.StatusBloqueado, st.Status)
	assert.Nil(t, st.Data)
	assert.Nil(t, st.CompletedAt)
}

func TestDocumento_ResetearNoCompletadoEsInvalido(t *testing.T) {
	_, svc, _, fichaID := prepararFicha(t)

	_, err := svc.Resetear(context.Background(), fichaID, "risst", dto.ResetearDocumentoRequest{Confirmar: true})
	assert.ErrorIs(t, err, docstate.ErrTransicionInvalida)
}

func TestDocumento_ClaveDesconocida(t *testing.T) {
	_, svc, _, fichaID := prepararFicha(t)

	_, err := svc.Desbloquear(context.Background(), fichaID, "contrato")
	assert.ErrorIs(t, err, docstate.ErrTransicionInvalida)
}
