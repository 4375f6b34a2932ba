package inventory

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que saldo y entrada del libro se
// confirmen como una unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error) error
}
