package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/pkg/activity"
	"productivity-pal-be/pkg/blobstore"

	"github.com/google/uuid"
)

const (
	TimerReminderExpired = "reminder-expired"
	TimerBreakEnded      = "break-ended"

	ButtonStartBreak = 0
	ButtonDismiss    = 1
)

var ErrInvalidBreakSettings = errors.New("break interval and duration must be positive")

type IBreakService interface {
	Restore(ctx context.Context, now time.Time) error
	State() model.BreakState
	// CheckReminder raises the reminder when the interval has elapsed while
	// the user is active. It reports whether a reminder was raised.
	CheckReminder(now time.Time, visitActive bool) bool
	OnNotificationButton(notificationID string, buttonIndex int, now time.Time)
	OnNotificationClosed(notificationID string)
	OnTimer(kind, token string, now time.Time)
	StartBreak(now time.Time) bool
	EndBreak(now time.Time) bool
	UpdateSettings(ctx context.Context, settings model.BreakSettings, now time.Time) error
	Shutdown()
	BroadcastStatus()
	SendStatus(channelID string) error
}

type breakService struct {
	state           model.BreakState
	defaults        model.BreakSettings
	reminderTimeout time.Duration

	store     blobstore.Store
	delivery  Delivery
	scheduler Scheduler
	publisher activity.Publisher
	logger    logger.ILogger

	cancelReminder  func()
	countdownToken  string
	cancelCountdown func()
}

func NewBreakService(
	store blobstore.Store,
	delivery Delivery,
	scheduler Scheduler,
	publisher activity.Publisher,
	defaults model.BreakSettings,
	reminderTimeout time.Duration,
	log logger.ILogger,
) IBreakService {
	return &breakService{
		state:           model.BreakState{Phase: model.BreakPhaseWorking, Settings: defaults},
		defaults:        defaults,
		reminderTimeout: reminderTimeout,
		store:           store,
		delivery:        delivery,
		scheduler:       scheduler,
		publisher:       publisher,
		logger:          log,
	}
}

// Restore loads the persisted settings and starts a fresh interval. A
// missing or unreadable blob keeps the defaults.
func (s *breakService) Restore(ctx context.Context, now time.Time) error {
	s.state = model.BreakState{
		Phase:         model.BreakPhaseWorking,
		LastBreakTime: now,
		Settings:      s.defaults,
	}

	blobs, err := s.store.Get(ctx, blobstore.KeyBreakSettings)
	if err != nil {
		return fmt.Errorf("load break settings: %w", err)
	}
	raw, ok := blobs[blobstore.KeyBreakSettings]
	if !ok {
		return nil
	}

	var blob model.BreakSettingsBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return fmt.Errorf("decode break settings: %w", err)
	}
	settings := blob.ToSettings()
	if settings.Interval <= 0 || settings.Duration <= 0 {
		s.logger.Warn("BreakService", "Ignoring stored break settings", map[string]interface{}{
			"breakInterval": blob.BreakInterval,
			"breakDuration": blob.BreakDuration,
		})
		return nil
	}
	s.state.Settings = settings
	return nil
}

func (s *breakService) State() model.BreakState {
	return s.state
}

func (s *breakService) CheckReminder(now time.Time, visitActive bool) bool {
	if s.state.Phase != model.BreakPhaseWorking || !visitActive {
		return false
	}
	if now.Sub(s.state.LastBreakTime) < s.state.Settings.Interval {
		return false
	}

	id := "break-reminder-" + uuid.NewString()
	s.state.Phase = model.BreakPhaseReminderPending
	s.state.PendingReminderID = id
	s.cancelReminder = s.scheduler.Schedule(TimerReminderExpired, id, s.reminderTimeout)

	s.delivery.Broadcast(dto.ShowNotificationMessage{
		Type:    dto.KindShowNotification,
		ID:      id,
		Title:   "Time for a break",
		Message: fmt.Sprintf("You have been working for %d minutes. Take a %d minute break?", int(s.state.Settings.Interval.Minutes()), int(s.state.Settings.Duration.Minutes())),
		Buttons: []dto.NotificationButton{{Title: "Start Break"}, {Title: "Dismiss"}},
	})
	s.BroadcastStatus()
	s.logger.Info("BreakService", "Break reminder raised", map[string]interface{}{"id": id})
	return true
}

func (s *breakService) OnNotificationButton(notificationID string, buttonIndex int, now time.Time) {
	if s.state.Phase != model.BreakPhaseReminderPending || notificationID != s.state.PendingReminderID {
		return
	}
	switch buttonIndex {
	case ButtonStartBreak:
		s.StartBreak(now)
	case ButtonDismiss:
		s.dismissReminder()
		s.BroadcastStatus()
	}
}

func (s *breakService) OnNotificationClosed(notificationID string) {
	if s.state.Phase != model.BreakPhaseReminderPending || notificationID != s.state.PendingReminderID {
		return
	}
	s.dismissReminder()
	s.BroadcastStatus()
}

// OnTimer ignores fires whose token no longer matches the live timer.
func (s *breakService) OnTimer(kind, token string, now time.Time) {
	switch kind {
	case TimerReminderExpired:
		if s.state.Phase == model.BreakPhaseReminderPending && token == s.state.PendingReminderID {
			s.cancelReminder = nil
			s.dismissReminder()
			s.BroadcastStatus()
		}
	case TimerBreakEnded:
		if s.state.IsOnBreak() && token == s.countdownToken {
			s.cancelCountdown = nil
			s.EndBreak(now)
		}
	}
}

func (s *breakService) StartBreak(now time.Time) bool {
	if s.state.IsOnBreak() {
		return false
	}
	if s.state.Phase == model.BreakPhaseReminderPending {
		s.dismissReminder()
	}

	s.stopCountdown()
	s.state.Phase = model.BreakPhaseOnBreak
	s.state.LastBreakTime = now
	s.state.BreakEndsAt = now.Add(s.state.Settings.Duration)
	s.countdownToken = uuid.NewString()
	s.cancelCountdown = s.scheduler.Schedule(TimerBreakEnded, s.countdownToken, s.state.Settings.Duration)

	s.publisher.PublishBreakStarted(now, s.state.Settings.Duration)
	s.BroadcastStatus()
	s.logger.Info("BreakService", "Break started", map[string]interface{}{"endsAt": s.state.BreakEndsAt})
	return true
}

func (s *breakService) EndBreak(now time.Time) bool {
	if !s.state.IsOnBreak() {
		return false
	}
	s.stopCountdown()
	s.state.Phase = model.BreakPhaseWorking
	s.state.LastBreakTime = now
	s.state.BreakEndsAt = time.Time{}

	s.delivery.Broadcast(dto.ShowNotificationMessage{
		Type:    dto.KindShowNotification,
		ID:      "break-over-" + uuid.NewString(),
		Title:   "Break is over",
		Message: "Time to get back to work!",
	})
	s.publisher.PublishBreakEnded(now)
	s.BroadcastStatus()
	s.logger.Info("BreakService", "Break ended", nil)
	return true
}

func (s *breakService) UpdateSettings(ctx context.Context, settings model.BreakSettings, now time.Time) error {
	if settings.Interval <= 0 || settings.Duration <= 0 {
		return ErrInvalidBreakSettings
	}

	if s.state.IsOnBreak() {
		s.EndBreak(now)
	}
	if s.state.Phase == model.BreakPhaseReminderPending {
		s.dismissReminder()
	}
	s.state.Settings = settings
	s.state.LastBreakTime = now

	data, err := json.Marshal(settings.ToBlob())
	if err == nil {
		err = s.store.Set(ctx, map[string][]byte{blobstore.KeyBreakSettings: data})
	}
	if err != nil {
		s.logger.Error("BreakService", "Failed to persist break settings", map[string]interface{}{"error": err.Error()})
	}

	s.BroadcastStatus()
	return nil
}

// Shutdown cancels outstanding timers. State is left as is; the next start
// restores from storage.
func (s *breakService) Shutdown() {
	s.stopCountdown()
	if s.cancelReminder != nil {
		s.cancelReminder()
		s.cancelReminder = nil
	}
}

func (s *breakService) BroadcastStatus() {
	s.delivery.Broadcast(dto.NewBreakStatus(s.state))
}

func (s *breakService) SendStatus(channelID string) error {
	return s.delivery.Send(channelID, dto.NewBreakStatus(s.state))
}

// dismissReminder returns to Working without touching lastBreakTime.
func (s *breakService) dismissReminder() {
	if s.cancelReminder != nil {
		s.cancelReminder()
		s.cancelReminder = nil
	}
	id := s.state.PendingReminderID
	s.state.PendingReminderID = ""
	s.state.Phase = model.BreakPhaseWorking
	if id != "" {
		s.delivery.Broadcast(dto.ClearNotificationMessage{Type: dto.KindClearNotification, ID: id})
	}
}

func (s *breakService) stopCountdown() {
	if s.cancelCountdown != nil {
		s.cancelCountdown()
		s.cancelCountdown = nil
	}
	s.countdownToken = ""
}
