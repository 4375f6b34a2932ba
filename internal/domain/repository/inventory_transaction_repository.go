package repository

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
)

// InventoryTransactionRepository define el puerto del libro de transacciones
// (append-only: solo se insertan entradas, nunca se modifican).
type InventoryTransactionRepository interface {
	Create(ctx context.Context, txn *entity.InventoryTransaction) error
	// ListByLot devuelve el libro completo del lote, de la más reciente a la
	// más antigua. Para auditoría/reconstrucción, no para el saldo en vivo.
	ListByLot(ctx context.Context, lotNumber string) ([]*entity.InventoryTransaction, error)
}
