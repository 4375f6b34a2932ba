package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/BrewPi-api/internal/application/events"
	"github.com/jhoicas/BrewPi-api/internal/domain"
	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

// LedgerUseCase implementa el libro de inventario: toda mutación de
// quantity_available se confirma junto a una entrada inmutable del libro en la
// misma transacción, con bloqueo de fila (SELECT FOR UPDATE) para que dos
// consumos concurrentes no pasen la verificación de saldo con un valor viejo.
type LedgerUseCase struct {
	txRunner    TxRunner
	itemRepo    repository.InventoryItemRepository
	txnRepo     repository.InventoryTransactionRepository
	broadcaster *events.Broadcaster
}

// NewLedgerUseCase construye el caso de uso. itemRepo/txnRepo atados al pool
// se usan solo para lecturas; las mutaciones pasan por txRunner.
func NewLedgerUseCase(
	txRunner TxRunner,
	itemRepo repository.InventoryItemRepository,
	txnRepo repository.InventoryTransactionRepository,
	broadcaster *events.Broadcaster,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		itemRepo:    itemRepo,
		txnRepo:     txnRepo,
		broadcaster: broadcaster,
	}
}

// ItemInput datos para crear un lote.
type ItemInput struct {
	LotNumber         string
	Name              string
	Category          string
	QuantityAvailable decimal.Decimal
	Unit              string
	Supplier          *string
	Cost              *decimal.Decimal
	ExpiryDate        *time.Time
	Location          *string
}

// ItemPatch campos opcionales para actualización parcial; nil = sin cambio.
type ItemPatch struct {
	Name              *string
	Category          *string
	QuantityAvailable *decimal.Decimal
	Unit              *string
	Supplier          *string
	Cost              *decimal.Decimal
	ExpiryDate        *time.Time
	Location          *string
}

func (in ItemInput) validate() error {
	if in.LotNumber == "" || in.Name == "" || in.Unit == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidCategory(in.Category) {
		return domain.ErrInvalidInput
	}
	if in.QuantityAvailable.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// ListItems devuelve todos los lotes.
func (uc *LedgerUseCase) ListItems(ctx context.Context) ([]*entity.InventoryItem, error) {
	return uc.itemRepo.List(ctx)
}

// GetItem devuelve un lote por número; domain.ErrNotFound si no existe.
func (uc *LedgerUseCase) GetItem(ctx context.Context, lotNumber string) (*entity.InventoryItem, error) {
	item, err := uc.itemRepo.Get(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// CreateItem inserta el lote y su transacción ALTA (delta = cantidad inicial)
// de forma atómica, y difunde el evento ALTA.
func (uc *LedgerUseCase) CreateItem(ctx context.Context, input ItemInput) (*entity.InventoryItem, error) {
	return uc.createWithEvent(ctx, input, entity.EventALTA, nil)
}

// UpdateItem aplica solo los campos presentes del patch. Si el patch cambia
// quantity_available se sintetiza una transacción AJUSTE con el delta firmado
// en la misma tx, manteniendo verdadero el invariante del libro.
func (uc *LedgerUseCase) UpdateItem(ctx context.Context, lotNumber string, patch ItemPatch) (*entity.InventoryItem, error) {
	if patch.Category != nil && !entity.ValidCategory(*patch.Category) {
		return nil, domain.ErrInvalidInput
	}
	if patch.QuantityAvailable != nil && patch.QuantityAvailable.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, lotNumber)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Category != nil {
			item.Category = *patch.Category
		}
		if patch.Unit != nil {
			item.Unit = *patch.Unit
		}
		if patch.Supplier != nil {
			item.Supplier = patch.Supplier
		}
		if patch.Cost != nil {
			item.Cost = patch.Cost
		}
		if patch.ExpiryDate != nil {
			item.ExpiryDate = patch.ExpiryDate
		}
		if patch.Location != nil {
			item.Location = patch.Location
		}
		if patch.QuantityAvailable != nil && !patch.QuantityAvailable.Equal(item.QuantityAvailable) {
			delta := patch.QuantityAvailable.Sub(item.QuantityAvailable)
			item.QuantityAvailable = *patch.QuantityAvailable
			txn := &entity.InventoryTransaction{
				LotNumber:     lotNumber,
				EventType:     entity.EventAJUSTE,
				QuantityDelta: delta,
				Timestamp:     time.Now().UTC(),
			}
			if err := txnRepo.Create(ctx, txn); err != nil {
				return err
			}
		}
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.broadcaster.Publish(events.Event{Event: events.TypeUpdate, LotNumber: lotNumber})
	return updated, nil
}

// DeleteItem elimina el lote y, por cascada, su libro; difunde DELETE.
func (uc *LedgerUseCase) DeleteItem(ctx context.Context, lotNumber string) error {
	if err := uc.itemRepo.Delete(ctx, lotNumber); err != nil {
		return err
	}
	uc.broadcaster.Publish(events.Event{Event: events.TypeDelete, LotNumber: lotNumber})
	return nil
}

// Consume descuenta stock del lote. Bloquea la fila, verifica que el saldo no
// quede negativo (domain.ErrInsufficientStock, sin efecto parcial) y registra
// la transacción CONSUMO con delta = -quantity, todo atómico. No es
// idempotente: repetirla descuenta dos veces.
func (uc *LedgerUseCase) Consume(ctx context.Context, lotNumber string, quantity decimal.Decimal, batchID *string) error {
	return uc.applyDelta(ctx, lotNumber, quantity, batchID, entity.EventCONSUMO)
}

// Return devuelve stock al lote (transacción DEVOLUCION con delta positivo).
func (uc *LedgerUseCase) Return(ctx context.Context, lotNumber string, quantity decimal.Decimal, batchID *string) error {
	return uc.applyDelta(ctx, lotNumber, quantity, batchID, entity.EventDEVOLUCION)
}

// applyDelta aplica un consumo o devolución con la cantidad estrictamente positiva.
func (uc *LedgerUseCase) applyDelta(ctx context.Context, lotNumber string, quantity decimal.Decimal, batchID *string, eventType string) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	delta := quantity
	if eventType == entity.EventCONSUMO {
		delta = quantity.Neg()
	}

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, lotNumber)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		newBalance := item.QuantityAvailable.Add(delta)
		if newBalance.IsNegative() {
			return domain.ErrInsufficientStock
		}
		item.QuantityAvailable = newBalance
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
		txn := &entity.InventoryTransaction{
			LotNumber:     lotNumber,
			EventType:     eventType,
			QuantityDelta: delta,
			BatchID:       batchID,
			Timestamp:     time.Now().UTC(),
		}
		return txnRepo.Create(ctx, txn)
	})
	if err != nil {
		return err
	}
	uc.broadcaster.Publish(events.Event{
		Event:     eventType,
		LotNumber: lotNumber,
		Delta:     delta.StringFixed(3),
	})
	return nil
}

// GetTransactions devuelve el libro completo del lote, de la más reciente a la
// más antigua. domain.ErrNotFound si el lote no existe.
func (uc *LedgerUseCase) GetTransactions(ctx context.Context, lotNumber string) ([]*entity.InventoryTransaction, error) {
	item, err := uc.itemRepo.Get(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return uc.txnRepo.ListByLot(ctx, lotNumber)
}

// SkippedRow fila rechazada durante una importación masiva.
type SkippedRow struct {
	Row       int    `json:"row"`
	LotNumber string `json:"lot_number"`
	Error     string `json:"error"`
}

// ImportSummary resumen de una importación masiva.
type ImportSummary struct {
	Inserted int          `json:"inserted"`
	Skipped  []SkippedRow `json:"skipped"`
}

// ImportItems crea lotes en bloque con evento IMPORT y un batch id compartido.
// Cada fila se confirma por separado; las inválidas o duplicadas se reportan
// en Skipped sin abortar el resto.
func (uc *LedgerUseCase) ImportItems(ctx context.Context, rows []ItemInput) (*ImportSummary, error) {
	batchID := uuid.New().String()
	summary := &ImportSummary{Skipped: []SkippedRow{}}
	for i, row := range rows {
		if _, err := uc.createWithEvent(ctx, row, entity.EventIMPORT, &batchID); err != nil {
			summary.Skipped = append(summary.Skipped, SkippedRow{
				Row:       i + 1,
				LotNumber: row.LotNumber,
				Error:     err.Error(),
			})
			continue
		}
		summary.Inserted++
	}
	return summary, nil
}

// createWithEvent inserta el lote y su transacción de alta (ALTA o IMPORT)
// atómicamente, y difunde el evento correspondiente.
func (uc *LedgerUseCase) createWithEvent(ctx context.Context, input ItemInput, eventType string, batchID *string) (*entity.InventoryItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	item := &entity.InventoryItem{
		LotNumber:         input.LotNumber,
		Name:              input.Name,
		Category:          input.Category,
		QuantityAvailable: input.QuantityAvailable,
		Unit:              input.Unit,
		Supplier:          input.Supplier,
		Cost:              input.Cost,
		ExpiryDate:        input.ExpiryDate,
		Location:          input.Location,
		CreatedAt:         time.Now().UTC(),
	}
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		txn := &entity.InventoryTransaction{
			LotNumber:     item.LotNumber,
			EventType:     eventType,
			QuantityDelta: item.QuantityAvailable,
			BatchID:       batchID,
			Timestamp:     item.CreatedAt,
		}
		return txnRepo.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	uc.broadcaster.Publish(events.Event{Event: eventType, LotNumber: item.LotNumber})
	return item, nil
}
