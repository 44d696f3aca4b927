package service

import (
	"context"
	"sync"
	"time"

	"productivity-pal-be/internal/model"
)

type fakeDelivery struct {
	mu        sync.Mutex
	broadcast []interface{}
	sent      map[string][]interface{}
}

func newFakeDelivery() *fakeDelivery {
	return &fakeDelivery{sent: make(map[string][]interface{})}
}

func (d *fakeDelivery) Broadcast(message interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcast = append(d.broadcast, message)
}

func (d *fakeDelivery) Send(channelID string, message interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[channelID] = append(d.sent[channelID], message)
	return nil
}

func (d *fakeDelivery) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcast = nil
	d.sent = make(map[string][]interface{})
}

type scheduledTimer struct {
	kind     string
	token    string
	after    time.Duration
	canceled bool
}

type fakeScheduler struct {
	timers []*scheduledTimer
}

func (s *fakeScheduler) Schedule(kind, token string, after time.Duration) func() {
	t := &scheduledTimer{kind: kind, token: token, after: after}
	s.timers = append(s.timers, t)
	return func() { t.canceled = true }
}

func (s *fakeScheduler) live(kind string) []*scheduledTimer {
	var out []*scheduledTimer
	for _, t := range s.timers {
		if t.kind == kind && !t.canceled {
			out = append(out, t)
		}
	}
	return out
}

type recordingPublisher struct {
	visits     []model.Visit
	categories []string
	started    int
	ended      int
}

func (p *recordingPublisher) PublishVisitRecorded(v model.Visit, _ model.Category) {
	p.visits = append(p.visits, v)
}

func (p *recordingPublisher) PublishCategoryChanged(domain string, _ model.Category, _ string) {
	p.categories = append(p.categories, domain)
}

func (p *recordingPublisher) PublishBreakStarted(time.Time, time.Duration) { p.started++ }
func (p *recordingPublisher) PublishBreakEnded(time.Time)                  { p.ended++ }

type classifierFunc func(ctx context.Context, domain string) (model.Category, error)

func (f classifierFunc) Classify(ctx context.Context, domain string) (model.Category, error) {
	return f(ctx, domain)
}
