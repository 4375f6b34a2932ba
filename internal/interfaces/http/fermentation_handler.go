package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BrewPi-api/internal/application/dto"
	"github.com/jhoicas/BrewPi-api/internal/application/fermentation"
)

// FermentationHandler maneja las peticiones HTTP del subsistema de fermentación.
type FermentationHandler struct {
	uc *fermentation.TankUseCase
}

// NewFermentationHandler construye el handler.
func NewFermentationHandler(uc *fermentation.TankUseCase) *FermentationHandler {
	return &FermentationHandler{uc: uc}
}

// ListTanks devuelve todos los tanques registrados.
func (h *FermentationHandler) ListTanks(c *fiber.Ctx) error {
	tanks, err := h.uc.ListTanks(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	out := make([]dto.TankResponse, 0, len(tanks))
	for _, t := range tanks {
		out = append(out, dto.NewTankResponse(t))
	}
	return c.JSON(out)
}

// AssignProfile asigna un perfil de fermentación al tanque (lo crea si no existe).
func (h *FermentationHandler) AssignProfile(c *fiber.Ctx) error {
	var in dto.AssignProfileRequest
	if err := c.BodyParser(&in); err != nil || in.ProfileName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.AssignProfile(c.Context(), c.Params("id"), in.ProfileName); err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "perfil asignado"})
}

// History devuelve las lecturas del tanque de la más antigua a la más reciente.
func (h *FermentationHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", fermentation.DefaultHistoryLimit)
	readings, err := h.uc.History(c.Context(), c.Params("id"), limit)
	if err != nil {
		return internalError(c, err)
	}
	out := make([]dto.ReadingResponse, 0, len(readings))
	for _, r := range readings {
		out = append(out, dto.NewReadingResponse(r))
	}
	return c.JSON(out)
}
