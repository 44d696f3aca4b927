package websocket

import (
	"encoding/json"
	"errors"
	"sync"

	"productivity-pal-be/internal/pkg/logger"
)

var (
	ErrChannelClosed  = errors.New("websocket: channel closed")
	ErrSlowConsumer   = errors.New("websocket: send buffer full")
	ErrUnknownChannel = errors.New("websocket: unknown channel")
)

// Channel is one connected observer.
type Channel interface {
	ID() string
	// Name is the label the peer connected with, e.g. "popup".
	Name() string
	Deliver(data []byte) error
	Close()
}

// Inbox receives connection lifecycle and inbound messages. Implementations
// must not block; the tracker engine queues them.
type Inbox interface {
	Connected(ch Channel)
	Received(channelID string, data []byte)
	Disconnected(channelID string)
}

// Hub is the registry of live observer channels.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]Channel

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		channels: make(map[string]Channel),
		logger:   log,
	}
}

func (h *Hub) Register(ch Channel) {
	h.mu.Lock()
	h.channels[ch.ID()] = ch
	h.mu.Unlock()
	h.logger.Info("Hub", "Channel registered", map[string]interface{}{"channel_id": ch.ID(), "name": ch.Name()})
}

// Unregister removes the channel and closes it. Unknown ids are ignored.
func (h *Hub) Unregister(channelID string) {
	h.mu.Lock()
	ch, ok := h.channels[channelID]
	delete(h.channels, channelID)
	h.mu.Unlock()

	if ok {
		ch.Close()
		h.logger.Info("Hub", "Channel unregistered", map[string]interface{}{"channel_id": channelID})
	}
}

func (h *Hub) Lookup(channelID string) (Channel, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.channels[channelID]
	return ch, ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// Broadcast delivers message to every channel. A channel that fails is
// dropped; the others still get the message.
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode broadcast", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	targets := make([]Channel, 0, len(h.channels))
	for _, ch := range h.channels {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		if err := ch.Deliver(data); err != nil {
			h.logger.Warn("Hub", "Dropping channel after failed delivery", map[string]interface{}{
				"channel_id": ch.ID(),
				"error":      err.Error(),
			})
			h.Unregister(ch.ID())
		}
	}
}

func (h *Hub) Send(channelID string, message interface{}) error {
	ch, ok := h.Lookup(channelID)
	if !ok {
		return ErrUnknownChannel
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := ch.Deliver(data); err != nil {
		h.Unregister(channelID)
		return err
	}
	return nil
}

// CloseAll disconnects every channel.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	channels := h.channels
	h.channels = make(map[string]Channel)
	h.mu.Unlock()

	for _, ch := range channels {
		ch.Close()
	}
	h.logger.Info("Hub", "All channels closed", map[string]interface{}{"count": len(channels)})
}
