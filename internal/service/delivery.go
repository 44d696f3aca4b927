package service

import "time"

// Delivery pushes messages to connected UI channels.
// Implemented by the websocket hub.
type Delivery interface {
	Broadcast(message interface{})
	Send(channelID string, message interface{}) error
}

// Scheduler arms a one-shot timer that comes back as (kind, token) on the
// engine's event queue. The returned func cancels it.
type Scheduler interface {
	Schedule(kind, token string, after time.Duration) (cancel func())
}
