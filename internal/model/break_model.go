package model

import "time"

// BreakPhase is the state of the break scheduler.
type BreakPhase string

const (
	BreakPhaseWorking         BreakPhase = "WORKING"
	BreakPhaseReminderPending BreakPhase = "REMINDER_PENDING"
	BreakPhaseOnBreak         BreakPhase = "ON_BREAK"
)

// BreakSettings are persisted in minutes and held as durations.
type BreakSettings struct {
	Interval time.Duration
	Duration time.Duration
}

// BreakSettingsBlob is the wire and storage form, in minutes.
type BreakSettingsBlob struct {
	BreakInterval float64 `json:"breakInterval"`
	BreakDuration float64 `json:"breakDuration"`
}

func (s BreakSettings) ToBlob() BreakSettingsBlob {
	return BreakSettingsBlob{
		BreakInterval: s.Interval.Minutes(),
		BreakDuration: s.Duration.Minutes(),
	}
}

func (b BreakSettingsBlob) ToSettings() BreakSettings {
	return BreakSettings{
		Interval: MinutesToDuration(b.BreakInterval),
		Duration: MinutesToDuration(b.BreakDuration),
	}
}

func MinutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

// BreakState is the process-wide break bookkeeping.
type BreakState struct {
	Phase         BreakPhase
	LastBreakTime time.Time
	Settings      BreakSettings

	// PendingReminderID is the id of the reminder notification awaiting an answer.
	PendingReminderID string
	BreakEndsAt       time.Time
}

func (s BreakState) IsOnBreak() bool {
	return s.Phase == BreakPhaseOnBreak
}

func (s BreakState) NextBreakTime() time.Time {
	return s.LastBreakTime.Add(s.Settings.Interval)
}
