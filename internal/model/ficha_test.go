package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocStates_RoundTripPreservaSubEstados(t *testing.T) {
	ts := time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)
	original := DocStates{
		"risst": {Status: "completed", Data: map[string]any{"firmado": true, "version": "2026-01"}, CompletedAt: &ts},
		"epp":   {Status: "unlocked"},
		"iperc": {Status: "locked"},
	}

	valor, err := original.Value()
	require.NoError(t, err)

	var decodificado DocStates
	require.NoError(t, decodificado.Scan(valor))

	require.Len(t, decodificado, 3)
	assert.Equal(t, "completed", decodificado["risst"].Status)
	assert.Equal(t, true, decodificado["risst"].Data["firmado"])
	require.NotNil(t, decodificado["risst"].CompletedAt)
	assert.True(t, ts.Equal(*decodificado["risst"].CompletedAt))
	assert.Equal(t, "unlocked", decodificado["epp"].Status)
	assert.Nil(t, decodificado["iperc"].Data)
}

func TestDocStates_ScanNilYMapaVacio(t *testing.T) {
	var ds DocStates
	require.NoError(t, ds.Scan(nil))
	assert.NotNil(t, ds)
	assert.Empty(t, ds)

	valor, err := DocStates(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", valor)
}

func TestDocStates_CloneEsCopiaProfunda(t *testing.T) {
	ts := time.Now().UTC()
	original := DocStates{
		"risst": {Status: "completed", Data: map[string]any{"firmado": true}, CompletedAt: &ts},
	}

	copia := original.Clone()
	copia["risst"].Data["firmado"] = false
	nueva := copia["risst"]
	nueva.Status = "locked"
	copia["risst"] = nueva

	assert.Equal(t, "completed", original["risst"].Status)
	assert.Equal(t, true, original["risst"].Data["firmado"])
}

func TestHijos_RoundTrip(t *testing.T) {
	nacimiento := time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)
	original := Hijos{
		{Nombres: "Luz", Apellidos: "Quispe", DNI: "90011223", FechaNacimiento: &nacimiento},
		{Nombres: "Marco", Apellidos: "Quispe"},
	}

	valor, err := original.Value()
	require.NoError(t, err)

	var decodificado Hijos
	require.NoError(t, decodificado.Scan(valor))
	require.Len(t, decodificado, 2)
	assert.Equal(t, "Luz", decodificado[0].Nombres)
	require.NotNil(t, decodificado[0].FechaNacimiento)
	assert.True(t, nacimiento.Equal(*decodificado[0].FechaNacimiento))
	assert.Empty(t, decodificado[1].DNI)
}
