// FILE: internal/dto/channel_dto.go
// Messages exchanged with connected UI channels
package dto

import (
	"encoding/json"
	"fmt"

	"productivity-pal-be/internal/model"
)

// UI -> core
const (
	KindGetStats                = "GET_STATS"
	KindUpdateCategory          = "UPDATE_CATEGORY"
	KindRequestAICategorization = "REQUEST_AI_CATEGORIZATION"
	KindUpdateBreakSettings     = "UPDATE_BREAK_SETTINGS"
	KindGetBreakStatus          = "GET_BREAK_STATUS"
	KindStartBreak              = "START_BREAK"
	KindEndBreak                = "END_BREAK"
	KindPing                    = "PING"
)

// core -> UI
const (
	KindInitialStats         = "INITIAL_STATS"
	KindStatsUpdate          = "STATS_UPDATE"
	KindBreakSettingsUpdated = "BREAK_SETTINGS_UPDATED"
	KindBreakStatus          = "BREAK_STATUS"
	KindShowNotification     = "SHOW_NOTIFICATION"
	KindClearNotification    = "CLEAR_NOTIFICATION"
)

// ChannelMessage is an inbound message. Payload fields sit next to "type",
// so the raw bytes are kept for the kind-specific decode.
type ChannelMessage struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

func DecodeChannelMessage(data []byte) (ChannelMessage, error) {
	var msg ChannelMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChannelMessage{}, fmt.Errorf("decode channel message: %w", err)
	}
	msg.Raw = append(json.RawMessage(nil), data...)
	return msg, nil
}

// Bind decodes the message body into req and validates it.
func (m ChannelMessage) Bind(req interface{}) error {
	if err := json.Unmarshal(m.Raw, req); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return Validate(req)
}

type UpdateCategoryRequest struct {
	Domain   string `json:"domain" validate:"required"`
	Category string `json:"category" validate:"required,oneof=productive neutral unproductive"`
}

type AICategorizationRequest struct {
	Domain string `json:"domain" validate:"required"`
}

// UpdateBreakSettingsRequest carries minutes.
type UpdateBreakSettingsRequest struct {
	BreakInterval float64 `json:"breakInterval" validate:"gt=0"`
	BreakDuration float64 `json:"breakDuration" validate:"gt=0"`
}

type StatsUpdateMessage struct {
	Type              string              `json:"type"`
	Data              []model.DomainEntry `json:"data"`
	ProductivityScore int                 `json:"productivityScore"`
}

type BreakStatusPayload struct {
	IsOnBreak     bool   `json:"isOnBreak"`
	Phase         string `json:"phase"`
	LastBreakTime int64  `json:"lastBreakTime"`
	NextBreakTime int64  `json:"nextBreakTime"`
	BreakEndsAt   int64  `json:"breakEndsAt,omitempty"`
}

type InitialStatsMessage struct {
	Type              string                  `json:"type"`
	Data              []model.DomainEntry     `json:"data"`
	ProductivityScore int                     `json:"productivityScore"`
	BreakSettings     model.BreakSettingsBlob `json:"breakSettings"`
	BreakStatus       BreakStatusPayload      `json:"breakStatus"`
}

type BreakStatusMessage struct {
	Type string `json:"type"`
	BreakStatusPayload
}

type BreakSettingsUpdatedMessage struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type NotificationButton struct {
	Title string `json:"title"`
}

type ShowNotificationMessage struct {
	Type    string               `json:"type"`
	ID      string               `json:"id"`
	Title   string               `json:"title"`
	Message string               `json:"message"`
	Buttons []NotificationButton `json:"buttons,omitempty"`
}

type ClearNotificationMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func NewStatsUpdate(entries []model.DomainEntry, score int) StatsUpdateMessage {
	if entries == nil {
		entries = []model.DomainEntry{}
	}
	return StatsUpdateMessage{Type: KindStatsUpdate, Data: entries, ProductivityScore: score}
}

func NewBreakStatusPayload(state model.BreakState) BreakStatusPayload {
	p := BreakStatusPayload{
		IsOnBreak:     state.IsOnBreak(),
		Phase:         string(state.Phase),
		LastBreakTime: state.LastBreakTime.UnixMilli(),
		NextBreakTime: state.NextBreakTime().UnixMilli(),
	}
	if state.IsOnBreak() {
		p.BreakEndsAt = state.BreakEndsAt.UnixMilli()
	}
	return p
}

func NewBreakStatus(state model.BreakState) BreakStatusMessage {
	return BreakStatusMessage{Type: KindBreakStatus, BreakStatusPayload: NewBreakStatusPayload(state)}
}

func NewInitialStats(entries []model.DomainEntry, score int, state model.BreakState) InitialStatsMessage {
	if entries == nil {
		entries = []model.DomainEntry{}
	}
	return InitialStatsMessage{
		Type:              KindInitialStats,
		Data:              entries,
		ProductivityScore: score,
		BreakSettings:     state.Settings.ToBlob(),
		BreakStatus:       NewBreakStatusPayload(state),
	}
}
