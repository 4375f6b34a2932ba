package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BrewPi-api/internal/application/events"
	"github.com/jhoicas/BrewPi-api/pkg/logger"
)

// WSHandler expone el stream de eventos de dominio por WebSocket: cada socket
// recibe su propia suscripción y se da de baja al desconectar.
type WSHandler struct {
	broadcaster *events.Broadcaster
	log         *logger.Logger
}

// NewWSHandler construye el handler.
func NewWSHandler(broadcaster *events.Broadcaster, log *logger.Logger) *WSHandler {
	return &WSHandler{broadcaster: broadcaster, log: log}
}

// Upgrade deja pasar solo peticiones de upgrade WebSocket.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream reenvía al socket cada evento publicado después de la conexión.
func (h *WSHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sub := h.broadcaster.Subscribe()
		defer sub.Close()

		for ev := range sub.Events() {
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug().Err(err).Msg("suscriptor WebSocket desconectado")
				return
			}
		}
	})
}
