package fermentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TakeComplete extrae solo los tanques con el triple completo y los elimina;
// los incompletos permanecen para el siguiente tick.
func TestBuffer_TakeCompleteSoloExtraeTriplesCompletos(t *testing.T) {
	b := NewBuffer()
	b.Put("F1", VarTemperature, 19.5)
	b.Put("F1", VarPressure, 1.01)
	b.Put("F1", VarCO2, 12.3)
	b.Put("F2", VarTemperature, 18.0)
	b.Put("F2", VarPressure, 1.00)

	complete := b.TakeComplete()

	require.Len(t, complete, 1)
	assert.Equal(t, Triple{Temperature: 19.5, Pressure: 1.01, CO2: 12.3}, complete["F1"])
	assert.Equal(t, 1, b.Len(), "F2 incompleto debe permanecer en el buffer")

	// Un segundo Take sin datos nuevos no devuelve nada.
	assert.Empty(t, b.TakeComplete())
}

// Un tanque que solo reporta dos de tres variables nunca se consolida,
// sin importar cuántos ticks pasen.
func TestBuffer_DosDeTresVariablesNuncaConsolida(t *testing.T) {
	b := NewBuffer()
	b.Put("F3", VarTemperature, 20.0)
	b.Put("F3", VarCO2, 11.0)

	for i := 0; i < 50; i++ {
		assert.Empty(t, b.TakeComplete())
	}
	assert.Equal(t, 1, b.Len())
}

// EvictStale desecha las entradas parciales más viejas que maxAge y reporta
// qué variables se habían visto.
func TestBuffer_EvictStaleDesechaParcialesAntiguos(t *testing.T) {
	b := NewBuffer()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	b.Put("F4", VarTemperature, 19.0)
	clock = clock.Add(20 * time.Minute)
	b.Put("F5", VarPressure, 1.02) // reciente

	stale := b.EvictStale(15 * time.Minute)

	require.Len(t, stale, 1)
	assert.Equal(t, "F4", stale[0].TankID)
	assert.Equal(t, []string{VarTemperature}, stale[0].Variables)
	assert.Equal(t, 20*time.Minute, stale[0].Age)
	assert.Equal(t, 1, b.Len(), "F5 reciente debe permanecer")

	// maxAge <= 0 desactiva la expulsión.
	assert.Nil(t, b.EvictStale(0))
}
