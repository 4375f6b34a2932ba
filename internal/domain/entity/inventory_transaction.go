package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento del libro de inventario.
const (
	EventALTA       = "ALTA"       // creación del lote
	EventAJUSTE     = "AJUSTE"     // ajuste directo de saldo
	EventCONSUMO    = "CONSUMO"    // consumo en producción
	EventDEVOLUCION = "DEVOLUCION" // devolución al stock
	EventIMPORT     = "IMPORT"     // alta por importación masiva
)

// InventoryTransaction es una entrada inmutable del libro: la suma de los
// QuantityDelta de un lote, en orden de timestamp desde cero, es igual al
// QuantityAvailable actual del ítem.
type InventoryTransaction struct {
	ID            int64
	LotNumber     string
	EventType     string
	QuantityDelta decimal.Decimal // positivo entrada/devolución, negativo consumo
	BatchID       *string
	Actor         *string
	Timestamp     time.Time
}
