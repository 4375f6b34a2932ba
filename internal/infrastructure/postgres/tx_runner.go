package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/BrewPi-api/internal/application/fermentation"
	"github.com/jhoicas/BrewPi-api/internal/application/inventory"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and fermentation.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ fermentation.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx
// y hace Commit o Rollback. Saldo y entrada del libro se confirman juntos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	txnRepo repository.InventoryTransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewInventoryItemRepository(tx)
	txnRepo := NewInventoryTransactionRepository(tx)

	if err := fn(itemRepo, txnRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunIngest inicia una transacción con repos de fermentación (para el flush de
// lecturas consolidadas: todas las del tick se confirman como una unidad).
func (r *TxRunner) RunIngest(ctx context.Context, fn func(
	tankRepo repository.TankRepository,
	readingRepo repository.ReadingRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tankRepo := NewTankRepository(tx)
	readingRepo := NewReadingRepository(tx)

	if err := fn(tankRepo, readingRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
