package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de ítem de inventario.
const (
	CategoryMalt       = "malt"
	CategoryHop        = "hop"
	CategoryYeast      = "yeast"
	CategoryAdditive   = "additive"
	CategoryPackage    = "package"
	CategoryConsumable = "consumable"
)

// ValidCategory indica si la categoría pertenece al enum permitido.
func ValidCategory(c string) bool {
	switch c {
	case CategoryMalt, CategoryHop, CategoryYeast, CategoryAdditive, CategoryPackage, CategoryConsumable:
		return true
	}
	return false
}

// InventoryItem representa un lote de inventario. QuantityAvailable es una
// proyección cacheada del libro de transacciones y nunca puede ser negativa.
type InventoryItem struct {
	LotNumber         string
	Name              string
	Category          string
	QuantityAvailable decimal.Decimal
	Unit              string
	Supplier          *string
	Cost              *decimal.Decimal
	ExpiryDate        *time.Time
	Location          *string
	CreatedAt         time.Time
}
