package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/BrewPi-api/internal/domain"
	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `lot_number, name, category, quantity_available, unit, supplier, cost, expiry_date, location, created_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.LotNumber, &it.Name, &it.Category, &it.QuantityAvailable, &it.Unit,
		&it.Supplier, &it.Cost, &it.ExpiryDate, &it.Location, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List devuelve todos los lotes.
func (r *InventoryItemRepo) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get obtiene un lote por número; nil si no existe.
func (r *InventoryItemRepo) Get(ctx context.Context, lotNumber string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE lot_number = $1`
	it, err := scanItem(r.q.QueryRow(ctx, query, lotNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el lote y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, lotNumber string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE lot_number = $1 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(ctx, query, lotNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return it, nil
}

// Create inserta un lote nuevo. domain.ErrDuplicate si el lot_number ya existe.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.LotNumber, item.Name, item.Category, item.QuantityAvailable, item.Unit,
		item.Supplier, item.Cost, item.ExpiryDate, item.Location, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// Update actualiza los campos del lote, incluido el saldo cacheado.
func (r *InventoryItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $2, category = $3, quantity_available = $4, unit = $5,
		    supplier = $6, cost = $7, expiry_date = $8, location = $9
		WHERE lot_number = $1`
	tag, err := r.q.Exec(ctx, query,
		item.LotNumber, item.Name, item.Category, item.QuantityAvailable, item.Unit,
		item.Supplier, item.Cost, item.ExpiryDate, item.Location,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el lote; sus transacciones caen por cascada (FK ON DELETE CASCADE).
func (r *InventoryItemRepo) Delete(ctx context.Context, lotNumber string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE lot_number = $1`, lotNumber)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
