package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/BrewPi-api/internal/application/events"
	"github.com/jhoicas/BrewPi-api/internal/application/inventory"
	"github.com/jhoicas/BrewPi-api/internal/domain"
	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: el runner serializa las transacciones con un mutex
// (equivalente al bloqueo de fila) y restaura el estado si el callback falla
// (equivalente al rollback).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu     sync.Mutex
	items  map[string]entity.InventoryItem
	txns   []entity.InventoryTransaction
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]entity.InventoryItem)}
}

func (s *memStore) snapshot() (map[string]entity.InventoryItem, []entity.InventoryTransaction, int64) {
	items := make(map[string]entity.InventoryItem, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	txns := append([]entity.InventoryTransaction(nil), s.txns...)
	return items, txns, s.nextID
}

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) List(_ context.Context) ([]*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.InventoryItem, 0, len(r.s.items))
	for _, it := range r.s.items {
		cp := it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memItemRepo) Get(_ context.Context, lot string) (*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[lot]
	if !ok {
		return nil, nil
	}
	cp := it
	return &cp, nil
}

func (r *memItemRepo) GetForUpdate(ctx context.Context, lot string) (*entity.InventoryItem, error) {
	return r.Get(ctx, lot)
}

func (r *memItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.LotNumber]; ok {
		return domain.ErrDuplicate
	}
	r.s.items[item.LotNumber] = *item
	return nil
}

func (r *memItemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.LotNumber]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[item.LotNumber] = *item
	return nil
}

func (r *memItemRepo) Delete(_ context.Context, lot string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[lot]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.items, lot)
	kept := r.s.txns[:0]
	for _, t := range r.s.txns {
		if t.LotNumber != lot {
			kept = append(kept, t)
		}
	}
	r.s.txns = kept
	return nil
}

type memTxnRepo struct{ s *memStore }

func (r *memTxnRepo) Create(_ context.Context, txn *entity.InventoryTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	txn.ID = r.s.nextID
	r.s.txns = append(r.s.txns, *txn)
	return nil
}

func (r *memTxnRepo) ListByLot(_ context.Context, lot string) ([]*entity.InventoryTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryTransaction
	for i := len(r.s.txns) - 1; i >= 0; i-- { // más reciente primero
		if r.s.txns[i].LotNumber == lot {
			cp := r.s.txns[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memTxRunner struct {
	s    *memStore
	txMu sync.Mutex
}

func (f *memTxRunner) Run(_ context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	txnRepo repository.InventoryTransactionRepository,
) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	f.s.mu.Lock()
	items, txns, nextID := f.s.snapshot()
	f.s.mu.Unlock()
	if err := fn(&memItemRepo{s: f.s}, &memTxnRepo{s: f.s}); err != nil {
		f.s.mu.Lock()
		f.s.items, f.s.txns, f.s.nextID = items, txns, nextID
		f.s.mu.Unlock()
		return err
	}
	return nil
}

func newLedger(t *testing.T) (*inventory.LedgerUseCase, *memStore, *events.Broadcaster) {
	t.Helper()
	s := newMemStore()
	b := events.NewBroadcaster(64)
	uc := inventory.NewLedgerUseCase(&memTxRunner{s: s}, &memItemRepo{s: s}, &memTxnRepo{s: s}, b)
	return uc, s, b
}

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func maltInput(lot, qty string) inventory.ItemInput {
	return inventory.ItemInput{
		LotNumber:         lot,
		Name:              "Malta Pilsner",
		Category:          entity.CategoryMalt,
		QuantityAvailable: dec(qty),
		Unit:              "kg",
	}
}

// ledgerSum suma los deltas del libro de un lote.
func ledgerSum(t *testing.T, uc *inventory.LedgerUseCase, lot string) decimal.Decimal {
	t.Helper()
	txns, err := uc.GetTransactions(context.Background(), lot)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, txn := range txns {
		sum = sum.Add(txn.QuantityDelta)
	}
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: crear un lote registra el ítem y una transacción ALTA con delta = cantidad inicial.
func TestCreateItem_RegistraAltaAtomica(t *testing.T) {
	uc, _, b := newLedger(t)
	sub := b.Subscribe()
	defer sub.Close()

	item, err := uc.CreateItem(context.Background(), maltInput("L-001", "25.000"))
	require.NoError(t, err)
	assert.True(t, item.QuantityAvailable.Equal(dec("25.000")))

	txns, err := uc.GetTransactions(context.Background(), "L-001")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, entity.EventALTA, txns[0].EventType)
	assert.True(t, txns[0].QuantityDelta.Equal(dec("25.000")))

	ev := <-sub.Events()
	assert.Equal(t, events.TypeAlta, ev.Event)
	assert.Equal(t, "L-001", ev.LotNumber)
}

// Caso 1b: lote duplicado => ErrDuplicate y sin transacción extra.
func TestCreateItem_LoteDuplicado(t *testing.T) {
	uc, s, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	_, err = uc.CreateItem(context.Background(), maltInput("L-001", "5.000"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, s.txns, 1, "el intento fallido no debe dejar entradas en el libro")
}

// Caso 2: consumir descuenta saldo y agrega CONSUMO con delta negativo;
// la suma del libro siempre es igual al saldo cacheado.
func TestConsume_DescuentaYMantieneInvariante(t *testing.T) {
	uc, _, b := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "25.000"))
	require.NoError(t, err)

	sub := b.Subscribe()
	defer sub.Close()

	batch := "BATCH-7"
	require.NoError(t, uc.Consume(context.Background(), "L-001", dec("7.500"), &batch))

	item, err := uc.GetItem(context.Background(), "L-001")
	require.NoError(t, err)
	assert.True(t, item.QuantityAvailable.Equal(dec("17.500")))
	assert.True(t, ledgerSum(t, uc, "L-001").Equal(item.QuantityAvailable),
		"la suma de deltas del libro debe igualar el saldo")

	txns, _ := uc.GetTransactions(context.Background(), "L-001")
	require.Len(t, txns, 2)
	assert.Equal(t, entity.EventCONSUMO, txns[0].EventType, "el libro va de más reciente a más antiguo")
	assert.True(t, txns[0].QuantityDelta.Equal(dec("-7.500")))
	require.NotNil(t, txns[0].BatchID)
	assert.Equal(t, "BATCH-7", *txns[0].BatchID)

	ev := <-sub.Events()
	assert.Equal(t, events.TypeConsumo, ev.Event)
	assert.Equal(t, "-7.500", ev.Delta)
}

// Caso 3: consumo mayor al saldo => ErrInsufficientStock, sin efecto parcial.
func TestConsume_StockInsuficienteSinEfecto(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	err = uc.Consume(context.Background(), "L-001", dec("10.001"), nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, _ := uc.GetItem(context.Background(), "L-001")
	assert.True(t, item.QuantityAvailable.Equal(dec("10.000")), "el saldo no debe cambiar")
	txns, _ := uc.GetTransactions(context.Background(), "L-001")
	assert.Len(t, txns, 1, "el libro no debe crecer")
}

// Caso 3b: consumir exactamente el saldo deja cero (el invariante es >= 0).
func TestConsume_SaldoExactoQuedaEnCero(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	require.NoError(t, uc.Consume(context.Background(), "L-001", dec("10.000"), nil))
	item, _ := uc.GetItem(context.Background(), "L-001")
	assert.True(t, item.QuantityAvailable.IsZero())
}

// Caso 4: cantidad no positiva o lote inexistente.
func TestConsume_EntradasInvalidas(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Consume(context.Background(), "L-001", decimal.Zero, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.Consume(context.Background(), "L-001", dec("-1"), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.Consume(context.Background(), "NO-EXISTE", dec("1"), nil), domain.ErrNotFound)
}

// Caso 5: dos consumos concurrentes que juntos exceden el saldo pero que
// individualmente caben: exactamente uno debe tener éxito y el saldo nunca
// queda negativo.
func TestConsume_ConcurrenteNoSobregira(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = uc.Consume(context.Background(), "L-001", dec("7.000"), nil)
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range results {
		if err == nil {
			okCount++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, okCount, "exactamente un consumo debe pasar")

	item, _ := uc.GetItem(context.Background(), "L-001")
	assert.True(t, item.QuantityAvailable.Equal(dec("3.000")))
	assert.False(t, item.QuantityAvailable.IsNegative())
	assert.True(t, ledgerSum(t, uc, "L-001").Equal(item.QuantityAvailable))
}

// Caso 6: un patch que cambia quantity_available sintetiza un AJUSTE con el
// delta firmado; un patch sin cambio de saldo no toca el libro.
func TestUpdateItem_CambioDeSaldoSintetizaAjuste(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	newQty := dec("15.500")
	item, err := uc.UpdateItem(context.Background(), "L-001", inventory.ItemPatch{QuantityAvailable: &newQty})
	require.NoError(t, err)
	assert.True(t, item.QuantityAvailable.Equal(newQty))

	txns, _ := uc.GetTransactions(context.Background(), "L-001")
	require.Len(t, txns, 2)
	assert.Equal(t, entity.EventAJUSTE, txns[0].EventType)
	assert.True(t, txns[0].QuantityDelta.Equal(dec("5.500")))
	assert.True(t, ledgerSum(t, uc, "L-001").Equal(newQty))

	// Patch solo de nombre: sin AJUSTE.
	name := "Malta Múnich"
	_, err = uc.UpdateItem(context.Background(), "L-001", inventory.ItemPatch{Name: &name})
	require.NoError(t, err)
	txns, _ = uc.GetTransactions(context.Background(), "L-001")
	assert.Len(t, txns, 2)

	_, err = uc.UpdateItem(context.Background(), "NO-EXISTE", inventory.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Caso 7: la devolución agrega DEVOLUCION con delta positivo.
func TestReturn_RegistraDevolucion(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)
	require.NoError(t, uc.Consume(context.Background(), "L-001", dec("4.000"), nil))

	require.NoError(t, uc.Return(context.Background(), "L-001", dec("1.500"), nil))

	item, _ := uc.GetItem(context.Background(), "L-001")
	assert.True(t, item.QuantityAvailable.Equal(dec("7.500")))
	txns, _ := uc.GetTransactions(context.Background(), "L-001")
	require.Len(t, txns, 3)
	assert.Equal(t, entity.EventDEVOLUCION, txns[0].EventType)
	assert.True(t, txns[0].QuantityDelta.Equal(dec("1.500")))
	assert.True(t, ledgerSum(t, uc, "L-001").Equal(item.QuantityAvailable))
}

// Caso 8: eliminar el lote borra el ítem y su libro por cascada.
func TestDeleteItem_CascadaDelLibro(t *testing.T) {
	uc, s, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	require.NoError(t, uc.DeleteItem(context.Background(), "L-001"))
	_, err = uc.GetItem(context.Background(), "L-001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, s.txns)

	assert.ErrorIs(t, uc.DeleteItem(context.Background(), "L-001"), domain.ErrNotFound)
}

// Caso 9: la importación masiva inserta las filas válidas con evento IMPORT y
// batch compartido, y reporta las rechazadas sin abortar el resto.
func TestImportItems_InsertaYReportaRechazos(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "10.000"))
	require.NoError(t, err)

	rows := []inventory.ItemInput{
		maltInput("L-100", "5.000"),
		maltInput("L-001", "3.000"), // duplicado
		maltInput("L-101", "2.000"),
	}
	summary, err := uc.ImportItems(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, 2, summary.Skipped[0].Row)
	assert.Equal(t, "L-001", summary.Skipped[0].LotNumber)

	txns, _ := uc.GetTransactions(context.Background(), "L-100")
	require.Len(t, txns, 1)
	assert.Equal(t, entity.EventIMPORT, txns[0].EventType)
	require.NotNil(t, txns[0].BatchID)

	txns101, _ := uc.GetTransactions(context.Background(), "L-101")
	require.Len(t, txns101, 1)
	require.NotNil(t, txns101[0].BatchID)
	assert.Equal(t, *txns[0].BatchID, *txns101[0].BatchID, "todas las filas comparten batch id")
}

// Caso 10: tras una secuencia mixta de operaciones, la suma de deltas del
// libro aplicada desde cero es igual al saldo actual.
func TestLibro_SumaDeDeltasIgualaSaldo(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateItem(context.Background(), maltInput("L-001", "100.000"))
	require.NoError(t, err)

	require.NoError(t, uc.Consume(context.Background(), "L-001", dec("12.345"), nil))
	require.NoError(t, uc.Return(context.Background(), "L-001", dec("2.345"), nil))
	newQty := dec("80.000")
	_, err = uc.UpdateItem(context.Background(), "L-001", inventory.ItemPatch{QuantityAvailable: &newQty})
	require.NoError(t, err)
	require.NoError(t, uc.Consume(context.Background(), "L-001", dec("79.999"), nil))

	item, err := uc.GetItem(context.Background(), "L-001")
	require.NoError(t, err)
	assert.True(t, ledgerSum(t, uc, "L-001").Equal(item.QuantityAvailable))
	assert.True(t, item.QuantityAvailable.Equal(dec("0.001")))
}

// Caso 11: validaciones de creación.
func TestCreateItem_Validaciones(t *testing.T) {
	uc, _, _ := newLedger(t)

	in := maltInput("L-001", "10.000")
	in.Category = "mineral"
	_, err := uc.CreateItem(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = maltInput("L-002", "-1.000")
	_, err = uc.CreateItem(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = maltInput("", "1.000")
	_, err = uc.CreateItem(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
