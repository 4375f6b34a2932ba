package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryTransactionRepo implementación sobre PostgreSQL (usable con pool o tx).
// El libro es append-only: solo Create y lecturas.
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

// Create persiste una entrada del libro. El id monotónico lo asigna la BD.
func (r *InventoryTransactionRepo) Create(ctx context.Context, txn *entity.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions (lot_number, event_type, quantity_delta, batch_id, actor, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		txn.LotNumber, txn.EventType, txn.QuantityDelta, txn.BatchID, txn.Actor, txn.Timestamp,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListByLot devuelve el libro completo del lote, de la más reciente a la más antigua.
func (r *InventoryTransactionRepo) ListByLot(ctx context.Context, lotNumber string) ([]*entity.InventoryTransaction, error) {
	query := `
		SELECT id, lot_number, event_type, quantity_delta, batch_id, actor, timestamp
		FROM inventory_transactions
		WHERE lot_number = $1
		ORDER BY timestamp DESC, id DESC`
	rows, err := r.q.Query(ctx, query, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entity.InventoryTransaction
	for rows.Next() {
		var t entity.InventoryTransaction
		if err := rows.Scan(&t.ID, &t.LotNumber, &t.EventType, &t.QuantityDelta, &t.BatchID, &t.Actor, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}
