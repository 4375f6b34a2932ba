package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BrewPi-api/internal/application/dto"
	"github.com/jhoicas/BrewPi-api/internal/application/inventory"
	"github.com/jhoicas/BrewPi-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario.
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ListItems devuelve todos los lotes.
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.uc.ListItems(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewItemResponse(it))
	}
	return c.JSON(out)
}

// CreateItem crea un lote con su transacción ALTA.
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.CreateItem(c.Context(), itemInput(in))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewItemResponse(item))
}

// UpdateItem aplica un patch parcial al lote.
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.UpdateItem(c.Context(), c.Params("lot"), inventory.ItemPatch{
		Name:              in.Name,
		Category:          in.Category,
		QuantityAvailable: in.QuantityAvailable,
		Unit:              in.Unit,
		Supplier:          in.Supplier,
		Cost:              in.Cost,
		ExpiryDate:        in.ExpiryDate,
		Location:          in.Location,
	})
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// DeleteItem elimina el lote y su libro.
func (h *InventoryHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.uc.DeleteItem(c.Context(), c.Params("lot")); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "lote eliminado"})
}

// Consume descuenta stock del lote.
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Consume(c.Context(), c.Params("lot"), in.Quantity, in.BatchID); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "consumo registrado"})
}

// Return devuelve stock al lote.
func (h *InventoryHandler) Return(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Return(c.Context(), c.Params("lot"), in.Quantity, in.BatchID); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "devolución registrada"})
}

// GetTransactions devuelve el libro completo del lote (más reciente primero).
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	txns, err := h.uc.GetTransactions(c.Context(), c.Params("lot"))
	if err != nil {
		return ledgerError(c, err)
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.NewTransactionResponse(t))
	}
	return c.JSON(out)
}

// Import crea lotes en bloque (filas JSON; el parseo de archivos queda fuera).
func (h *InventoryHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rows := make([]inventory.ItemInput, 0, len(in.Rows))
	for _, r := range in.Rows {
		rows = append(rows, itemInput(r))
	}
	summary, err := h.uc.ImportItems(c.Context(), rows)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(summary)
}

func itemInput(in dto.CreateItemRequest) inventory.ItemInput {
	return inventory.ItemInput{
		LotNumber:         in.LotNumber,
		Name:              in.Name,
		Category:          in.Category,
		QuantityAvailable: in.QuantityAvailable,
		Unit:              in.Unit,
		Supplier:          in.Supplier,
		Cost:              in.Cost,
		ExpiryDate:        in.ExpiryDate,
		Location:          in.Location,
	}
}

// ledgerError mapea errores de dominio del libro a códigos HTTP.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el lote ya existe"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	return internalError(c, err)
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
