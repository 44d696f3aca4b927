package websocket

import (
	"sync"
	"time"

	"productivity-pal-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is a middleman between the websocket connection and the tracker.
type Client struct {
	id   string
	name string

	conn   *websocket.Conn
	inbox  Inbox
	logger logger.ILogger

	// Buffered channel of outbound messages.
	send chan []byte

	closed    chan struct{}
	closeOnce sync.Once
}

func (c *Client) ID() string   { return c.id }
func (c *Client) Name() string { return c.name }

// Deliver never blocks: a full buffer means the peer stopped reading.
func (c *Client) Deliver(data []byte) error {
	select {
	case <-c.closed:
		return ErrChannelClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// readPump pumps messages from the websocket connection to the inbox.
func (c *Client) readPump() {
	defer func() {
		c.inbox.Disconnected(c.id)
		c.Close()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Client", "Unexpected close", map[string]interface{}{"channel_id": c.id, "error": err.Error()})
			}
			return
		}
		c.inbox.Received(c.id, data)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Client", "Write failed", map[string]interface{}{"channel_id": c.id, "error": err.Error()})
				c.Close()
				return
			}
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
