// Package activity publishes tracker milestones (recorded visits, category
// changes, breaks) to the NATS activity feed. Publishing never blocks the
// caller and failures are only logged.
package activity

import (
	"context"
	"time"

	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/pkg/events"
)

const publishTimeout = 5 * time.Second

// Publisher abstracts event publishing for tracker activity
type Publisher interface {
	PublishVisitRecorded(visit model.Visit, category model.Category)
	PublishCategoryChanged(domain string, category model.Category, source string)
	PublishBreakStarted(at time.Time, duration time.Duration)
	PublishBreakEnded(at time.Time)
}

// Sink is what the NATS publisher provides.
type Sink interface {
	Publish(ctx context.Context, event events.Event) error
}

type NatsPublisher struct {
	sink   Sink
	logger logger.ILogger
}

func NewNatsPublisher(sink Sink, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		sink:   sink,
		logger: logger,
	}
}

func (p *NatsPublisher) publish(evt events.BaseEvent) {
	if p.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.sink.Publish(ctx, evt); err != nil {
			p.logger.Error("Activity", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func (p *NatsPublisher) PublishVisitRecorded(visit model.Visit, category model.Category) {
	p.publish(events.BaseEvent{
		Type: events.TypeVisitRecorded,
		Data: map[string]interface{}{
			"domain":      visit.Domain,
			"category":    string(category),
			"start_time":  visit.StartTime.UnixMilli(),
			"end_time":    visit.EndTime.UnixMilli(),
			"duration_ms": visit.Duration.Milliseconds(),
		},
		OccurredAt: visit.EndTime,
	})
}

func (p *NatsPublisher) PublishCategoryChanged(domain string, category model.Category, source string) {
	p.publish(events.BaseEvent{
		Type: events.TypeCategoryChanged,
		Data: map[string]interface{}{
			"domain":   domain,
			"category": string(category),
			"source":   source,
		},
		OccurredAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishBreakStarted(at time.Time, duration time.Duration) {
	p.publish(events.BaseEvent{
		Type: events.TypeBreakStarted,
		Data: map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
		},
		OccurredAt: at,
	})
}

func (p *NatsPublisher) PublishBreakEnded(at time.Time) {
	p.publish(events.BaseEvent{
		Type:       events.TypeBreakEnded,
		Data:       map[string]interface{}{},
		OccurredAt: at,
	})
}

// NopPublisher is used when the activity feed is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishVisitRecorded(model.Visit, model.Category)      {}
func (NopPublisher) PublishCategoryChanged(string, model.Category, string) {}
func (NopPublisher) PublishBreakStarted(time.Time, time.Duration)          {}
func (NopPublisher) PublishBreakEnded(time.Time)                           {}
