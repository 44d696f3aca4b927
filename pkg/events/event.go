package events

import "time"

// Activity event codes published on the activity feed.
const (
	TypeVisitRecorded   = "VISIT_RECORDED"
	TypeCategoryChanged = "CATEGORY_CHANGED"
	TypeBreakStarted    = "BREAK_STARTED"
	TypeBreakEnded      = "BREAK_ENDED"
)

// Event defines the contract for all published events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "VISIT_RECORDED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
