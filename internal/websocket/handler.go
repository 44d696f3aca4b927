package websocket

import (
	"productivity-pal-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs runs the connection until the peer goes away. name identifies the
// kind of observer (popup, dashboard, content script).
func ServeWs(inbox Inbox, conn *websocket.Conn, name string, log logger.ILogger) {
	client := &Client{
		id:     uuid.NewString(),
		name:   name,
		conn:   conn,
		inbox:  inbox,
		logger: log,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
	inbox.Connected(client)

	go client.writePump()
	client.readPump()
}
