package docstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

func TestNuevosDocStatesTodoBloqueado(t *testing.T) {
	ds := NuevosDocStates()
	require.Len(t, ds, len(Claves))
	for _, c := range Claves {
		assert.Equal(t, StatusBloqueado, ds[c].Status)
		assert.Nil(t, ds[c].CompletedAt)
		assert.Empty(t, ds[c].Data)
	}
}

func TestFlujoDesbloquearCompletar(t *testing.T) {
	ds := NuevosDocStates()

	res, err := AdminUnlock(ds, "risst")
	require.NoError(t, err)
	assert.Equal(t, StatusDesbloqueado, res.DocStates["risst"].Status)
	// El mapa original no cambia
	assert.Equal(t, StatusBloqueado, ds["risst"].Status)

	payload := map[string]any{"firma": "data:image/png;base64,..."}
	res2, err := WorkerComplete(res.DocStates, "risst", payload, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCompletado, res2.DocStates["risst"].Status)
	require.NotNil(t, res2.DocStates["risst"].CompletedAt)
	assert.Equal(t, payload, res2.DocStates["risst"].Data)

	// Segundo intento de completar — rechazado sin mutar nada
	_, err = WorkerComplete(res2.DocStates, "risst", payload, time.Now())
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	assert.Equal(t, StatusCompletado, res2.DocStates["risst"].Status)
}

func TestCompletarBloqueadoRechazado(t *testing.T) {
	ds := NuevosDocStates()
	_, err := WorkerComplete(ds, "epp", map[string]any{"firma": "x"}, time.Now())
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	assert.Equal(t, StatusBloqueado, ds["epp"].Status)
}

func TestCompletarSinPayload(t *testing.T) {
	res, err := AdminUnlock(NuevosDocStates(), "iperc")
	require.NoError(t, err)
	_, err = WorkerComplete(res.DocStates, "iperc", nil, time.Now())
	assert.ErrorIs(t, err, ErrPrecondicionFallida)
}

func TestDocumentoDesconocido(t *testing.T) {
	ds := NuevosDocStates()
	_, err := AdminUnlock(ds, "sctr")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	_, err = WorkerComplete(ds, "sctr", map[string]any{"x": 1}, time.Now())
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestToggleSobreCompletadoEsNoOp(t *testing.T) {
	res, err := AdminUnlock(NuevosDocStates(), "induccion")
	require.NoError(t, err)
	res, err = WorkerComplete(res.DocStates, "induccion", map[string]any{"firma": "x"}, time.Now())
	require.NoError(t, err)

	// Bloquear / desbloquear sobre un completado: no-op explicito,
	// nunca descarta el estado completado.
	lock, err := AdminLock(res.DocStates, "induccion")
	require.NoError(t, err)
	assert.Equal(t, StatusCompletado, lock.DocStates["induccion"].Status)
	assert.NotNil(t, lock.DocStates["induccion"].CompletedAt)

	unlock, err := AdminUnlock(res.DocStates, "induccion")
	require.NoError(t, err)
	assert.Equal(t, StatusCompletado, unlock.DocStates["induccion"].Status)
}

func TestAdminResetLimpiaDatos(t *testing.T) {
	res, err := AdminUnlock(NuevosDocStates(), "iperc")
	require.NoError(t, err)
	res, err = WorkerComplete(res.DocStates, "iperc", map[string]any{"firma": "x"}, time.Now())
	require.NoError(t, err)

	reset, err := AdminReset(res.DocStates, "iperc")
	require.NoError(t, err)
	st := reset.DocStates["iperc"]
	assert.Equal(t, StatusBloqueado, st.Status)
	assert.Nil(t, st.CompletedAt)
	assert.Empty(t, st.Data)

	// Reset solo aplica a completados
	_, err = AdminReset(reset.DocStates, "iperc")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestSubmit(t *testing.T) {
	// Sin declaracion — precondicion fallida, estado intacto
	estado, err := Submit(model.EstadoPendiente, SubmitInput{CamposObligatoriosCompletos: true})
	assert.ErrorIs(t, err, ErrPrecondicionFallida)
	assert.Equal(t, model.EstadoPendiente, estado)

	// Campos incompletos
	_, err = Submit(model.EstadoPendiente, SubmitInput{DeclaracionAceptada: true})
	assert.ErrorIs(t, err, ErrPrecondicionFallida)

	// Envio valido
	estado, err = Submit(model.EstadoPendiente, SubmitInput{CamposObligatoriosCompletos: true, DeclaracionAceptada: true})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCompletada, estado)

	// Reenvio sobre completada — transicion invalida
	_, err = Submit(model.EstadoCompletada, SubmitInput{CamposObligatoriosCompletos: true, DeclaracionAceptada: true})
	assert.ErrorIs(t, err, ErrTransicionInvalida)

	// Estado corrupto
	_, err = Submit("archived", SubmitInput{})
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestReopen(t *testing.T) {
	estado, err := Reopen(model.EstadoCompletada)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, estado)

	// Idempotente sobre pendiente
	estado, err = Reopen(model.EstadoPendiente)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, estado)

	_, err = Reopen("archived")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestEtiqueta(t *testing.T) {
	assert.Equal(t, "Matriz IPERC", Etiqueta("iperc"))
	assert.Equal(t, "desconocido", Etiqueta("desconocido"))
}
