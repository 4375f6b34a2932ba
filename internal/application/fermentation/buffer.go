package fermentation

import (
	"sync"
	"time"
)

// Variables de telemetría esperadas por lectura.
const (
	VarTemperature = "temperature"
	VarPressure    = "pressure"
	VarCO2         = "co2"
)

// Triple es el conjunto completo de variables de una lectura consolidada.
type Triple struct {
	Temperature float64
	Pressure    float64
	CO2         float64
}

type partialEntry struct {
	values    map[string]float64
	firstSeen time.Time
}

// StaleEntry describe una entrada parcial desechada por antigüedad.
type StaleEntry struct {
	TankID    string
	Variables []string
	Age       time.Duration
}

// Buffer acumula lecturas parciales por tanque entre consolidaciones.
// Assembler escribe, el flusher lee y drena; el mutex garantiza que el
// snapshot-y-borrado de TakeComplete sea un paso único, de modo que un Put
// concurrente posterior cae en una entrada nueva y no se pierde.
type Buffer struct {
	mu      sync.Mutex
	entries map[string]*partialEntry
	now     func() time.Time
}

// NewBuffer construye el buffer vacío.
func NewBuffer() *Buffer {
	return &Buffer{entries: make(map[string]*partialEntry), now: time.Now}
}

// Put guarda el valor de una variable para un tanque. Sobrescribe el valor
// no consolidado anterior de esa variable (last-write-wins dentro de la ventana).
func (b *Buffer) Put(tankID, variable string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[tankID]
	if !ok {
		e = &partialEntry{values: make(map[string]float64), firstSeen: b.now()}
		b.entries[tankID] = e
	}
	e.values[variable] = value
}

// TakeComplete extrae atómicamente todas las entradas con el triple completo
// (temperature, pressure, co2) y las elimina del buffer. Las incompletas
// permanecen para el siguiente tick.
func (b *Buffer) TakeComplete() map[string]Triple {
	b.mu.Lock()
	defer b.mu.Unlock()
	complete := make(map[string]Triple)
	for tankID, e := range b.entries {
		t, okT := e.values[VarTemperature]
		p, okP := e.values[VarPressure]
		c, okC := e.values[VarCO2]
		if okT && okP && okC {
			complete[tankID] = Triple{Temperature: t, Pressure: p, CO2: c}
			delete(b.entries, tankID)
		}
	}
	return complete
}

// EvictStale desecha las entradas parciales cuya primera variable llegó hace
// más de maxAge y devuelve qué se desechó, para que el caller lo registre como
// posible sensor ausente. maxAge <= 0 desactiva la expulsión.
func (b *Buffer) EvictStale(maxAge time.Duration) []StaleEntry {
	if maxAge <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var stale []StaleEntry
	now := b.now()
	for tankID, e := range b.entries {
		age := now.Sub(e.firstSeen)
		if age <= maxAge {
			continue
		}
		vars := make([]string, 0, len(e.values))
		for v := range e.values {
			vars = append(vars, v)
		}
		stale = append(stale, StaleEntry{TankID: tankID, Variables: vars, Age: age})
		delete(b.entries, tankID)
	}
	return stale
}

// Len devuelve el número de tanques con datos parciales pendientes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Snapshot devuelve una copia de las variables acumuladas de un tanque
// (nil si no hay entrada). Solo para inspección/tests.
func (b *Buffer) Snapshot(tankID string) map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[tankID]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
