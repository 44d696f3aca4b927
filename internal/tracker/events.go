package tracker

import (
	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/websocket"
)

// Event is anything the engine loop consumes.
type Event interface {
	isEvent()
}

type TabFocused struct {
	TabID int
	URL   string
}

type TabNavigated struct {
	TabID int
	URL   string
}

type TabClosed struct {
	TabID int
}

type ChannelConnected struct {
	Channel websocket.Channel
}

type ChannelDisconnected struct {
	ChannelID string
}

type ChannelMessage struct {
	ChannelID string
	Data      []byte
}

// TimerFired comes back from a timer armed through Schedule.
type TimerFired struct {
	Kind  string
	Token string
}

type NotificationClicked struct {
	NotificationID string
	ButtonIndex    int
}

type NotificationClosed struct {
	NotificationID string
}

// CategoryClassified carries an AI result. Seq is the sequence of the
// request that started the classification, not of this event.
type CategoryClassified struct {
	Domain   string
	Category model.Category
	Seq      uint64
}

type PersistTick struct{}

// Suspend tears the engine down. The loop stops after handling it.
type Suspend struct{}

type call struct {
	fn   func()
	done chan struct{}
}

func (TabFocused) isEvent()          {}
func (TabNavigated) isEvent()        {}
func (TabClosed) isEvent()           {}
func (ChannelConnected) isEvent()    {}
func (ChannelDisconnected) isEvent() {}
func (ChannelMessage) isEvent()      {}
func (TimerFired) isEvent()          {}
func (NotificationClicked) isEvent() {}
func (NotificationClosed) isEvent()  {}
func (CategoryClassified) isEvent()  {}
func (PersistTick) isEvent()         {}
func (Suspend) isEvent()             {}
func (call) isEvent()                {}
