package repository

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia de lotes de inventario.
// Usado dentro de transacciones para garantizar consistencia del saldo.
type InventoryItemRepository interface {
	List(ctx context.Context) ([]*entity.InventoryItem, error)
	Get(ctx context.Context, lotNumber string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) dentro de la tx.
	GetForUpdate(ctx context.Context, lotNumber string) (*entity.InventoryItem, error)
	Create(ctx context.Context, item *entity.InventoryItem) error
	Update(ctx context.Context, item *entity.InventoryItem) error
	// Delete elimina el lote y, por cascada, sus transacciones. Devuelve
	// domain.ErrNotFound si el lote no existe.
	Delete(ctx context.Context, lotNumber string) error
}
