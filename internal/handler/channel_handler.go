package handler

import (
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/internal/pkg/serverutils"
	internalWS "productivity-pal-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const defaultChannelName = "content"

type ChannelHandler struct {
	inbox  internalWS.Inbox
	secret string
	logger logger.ILogger
}

func NewChannelHandler(inbox internalWS.Inbox, secret string, log logger.ILogger) *ChannelHandler {
	return &ChannelHandler{
		inbox:  inbox,
		secret: secret,
		logger: log,
	}
}

func (h *ChannelHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

// ServeWs upgrades an observer connection. The "name" query parameter tells
// primary UIs (popup, dashboard) apart from other listeners.
func (h *ChannelHandler) ServeWs(c *fiber.Ctx) error {
	if h.secret != "" {
		if _, err := serverutils.ParseToken(h.secret, serverutils.BearerToken(c)); err != nil {
			h.logger.Warn("ChannelHandler", "Invalid token in channel handshake", map[string]interface{}{"error": err.Error()})
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
	}

	name := c.Query("name", defaultChannelName)

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChannelHandler", "Channel session started", map[string]interface{}{"name": name})
			internalWS.ServeWs(h.inbox, conn, name, h.logger)
			h.logger.Info("ChannelHandler", "Channel session ended", map[string]interface{}{"name": name})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
