package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BrewPi-api/internal/application/events"
	"github.com/jhoicas/BrewPi-api/internal/application/fermentation"
	"github.com/jhoicas/BrewPi-api/internal/application/inventory"
	"github.com/jhoicas/BrewPi-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC    *inventory.LedgerUseCase
	TankUC      *fermentation.TankUseCase
	Broadcaster *events.Broadcaster
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Inventario
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	inv.Get("/items", inventoryHandler.ListItems)
	inv.Post("/items", inventoryHandler.CreateItem)
	inv.Patch("/items/:lot", inventoryHandler.UpdateItem)
	inv.Delete("/items/:lot", inventoryHandler.DeleteItem)
	inv.Get("/items/:lot/transactions", inventoryHandler.GetTransactions)
	inv.Post("/items/:lot/consume", inventoryHandler.Consume)
	inv.Post("/items/:lot/return", inventoryHandler.Return)
	inv.Post("/import", inventoryHandler.Import)

	// Stream de eventos (inventario + telemetría)
	wsHandler := NewWSHandler(deps.Broadcaster, deps.Log)
	inv.Use("/ws", wsHandler.Upgrade)
	inv.Get("/ws", wsHandler.Stream())

	// Fermentación
	ferm := api.Group("/fermentation")
	fermentationHandler := NewFermentationHandler(deps.TankUC)
	ferm.Get("/tanks", fermentationHandler.ListTanks)
	ferm.Post("/tanks/:id/profile", fermentationHandler.AssignProfile)
	ferm.Get("/tanks/:id/history", fermentationHandler.History)
}
