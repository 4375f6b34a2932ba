package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/BrewPi-api/internal/application/events"
	"github.com/jhoicas/BrewPi-api/internal/application/fermentation"
	"github.com/jhoicas/BrewPi-api/internal/application/inventory"
	inframqtt "github.com/jhoicas/BrewPi-api/internal/infrastructure/mqtt"
	"github.com/jhoicas/BrewPi-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/BrewPi-api/internal/interfaces/http"
	"github.com/jhoicas/BrewPi-api/pkg/config"
	"github.com/jhoicas/BrewPi-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tankRepo := postgres.NewTankRepository(pool)
	readingRepo := postgres.NewReadingRepository(pool)
	itemRepo := postgres.NewInventoryItemRepository(pool)
	txnRepo := postgres.NewInventoryTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	broadcaster := events.NewBroadcaster(64)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, itemRepo, txnRepo, broadcaster)
	tankUC := fermentation.NewTankUseCase(tankRepo, readingRepo)

	// Ingesta de telemetría: MQTT -> assembler -> buffer -> flusher -> BD
	buffer := fermentation.NewBuffer()
	assembler := fermentation.NewAssembler(cfg.Ingest.TopicNamespace, buffer)
	manager := inframqtt.NewManager(cfg.MQTT, log.Component("mqtt"))
	manager.AddListener(assembler.HandleMessage)

	flusher := fermentation.NewFlusher(
		buffer, txRunner, broadcaster, log.Component("flusher"),
		cfg.Ingest.FlushInterval(), cfg.Ingest.BufferMaxAge(),
	)

	go manager.Run(ctx)
	go flusher.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:    ledgerUC,
		TankUC:      tankUC,
		Broadcaster: broadcaster,
		Log:         log.Component("ws"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel() // detiene el loop MQTT y el flusher

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
