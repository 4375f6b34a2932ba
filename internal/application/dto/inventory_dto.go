package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
)

// CreateItemRequest cuerpo para crear un lote de inventario.
type CreateItemRequest struct {
	LotNumber         string           `json:"lot_number"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	QuantityAvailable decimal.Decimal  `json:"quantity_available"`
	Unit              string           `json:"unit"`
	Supplier          *string          `json:"supplier,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	Location          *string          `json:"location,omitempty"`
}

// UpdateItemRequest patch parcial de un lote; campos ausentes no cambian.
type UpdateItemRequest struct {
	Name              *string          `json:"name,omitempty"`
	Category          *string          `json:"category,omitempty"`
	QuantityAvailable *decimal.Decimal `json:"quantity_available,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	Supplier          *string          `json:"supplier,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	Location          *string          `json:"location,omitempty"`
}

// ConsumeRequest cuerpo para consumir o devolver stock de un lote.
type ConsumeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	BatchID  *string         `json:"batch_id,omitempty"`
}

// ItemResponse representación de un lote.
type ItemResponse struct {
	LotNumber         string           `json:"lot_number"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	QuantityAvailable decimal.Decimal  `json:"quantity_available"`
	Unit              string           `json:"unit"`
	Supplier          *string          `json:"supplier,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	Location          *string          `json:"location,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// NewItemResponse mapea la entidad al DTO de salida.
func NewItemResponse(it *entity.InventoryItem) ItemResponse {
	return ItemResponse{
		LotNumber:         it.LotNumber,
		Name:              it.Name,
		Category:          it.Category,
		QuantityAvailable: it.QuantityAvailable,
		Unit:              it.Unit,
		Supplier:          it.Supplier,
		Cost:              it.Cost,
		ExpiryDate:        it.ExpiryDate,
		Location:          it.Location,
		CreatedAt:         it.CreatedAt,
	}
}

// TransactionResponse representación de una entrada del libro.
type TransactionResponse struct {
	ID            int64           `json:"id"`
	EventType     string          `json:"event_type"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	BatchID       *string         `json:"batch_id,omitempty"`
	Actor         *string         `json:"actor,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewTransactionResponse mapea la entidad al DTO de salida.
func NewTransactionResponse(t *entity.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		EventType:     t.EventType,
		QuantityDelta: t.QuantityDelta,
		BatchID:       t.BatchID,
		Actor:         t.Actor,
		Timestamp:     t.Timestamp,
	}
}

// ImportRequest filas JSON para importación masiva (el parseo de archivos
// CSV/Excel queda fuera de este servicio).
type ImportRequest struct {
	Rows []CreateItemRequest `json:"rows"`
}
