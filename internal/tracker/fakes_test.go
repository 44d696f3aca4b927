package tracker

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/internal/websocket"
	"productivity-pal-be/pkg/blobstore"
	"productivity-pal-be/pkg/classifier"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeChannel struct {
	id, name string
	mu       sync.Mutex
	got      [][]byte
	closed   bool
}

func (c *fakeChannel) ID() string   { return c.id }
func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Deliver(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrChannelClosed
	}
	c.got = append(c.got, data)
	return nil
}

func (c *fakeChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeChannel) messages(t *testing.T) []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(c.got))
	for _, raw := range c.got {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeChannel) ofType(t *testing.T, kind string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, m := range c.messages(t) {
		if m["type"] == kind {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeChannel) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = nil
}

// gatedClassifier answers with category once release is closed.
type gatedClassifier struct {
	category model.Category
	release  chan struct{}
}

func (g *gatedClassifier) Classify(ctx context.Context, _ string) (model.Category, error) {
	select {
	case <-g.release:
		return g.category, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type harness struct {
	engine *Engine
	clock  *fakeClock
	hub    *websocket.Hub
	store  *blobstore.MemoryStore
}

func newHarness(t *testing.T, cls classifier.Classifier, mutate func(*Options)) *harness {
	h := &harness{
		clock: newFakeClock(),
		hub:   websocket.NewHub(logger.NewNopLogger()),
		store: blobstore.NewMemoryStore(),
	}
	opts := Options{
		PersistInterval: time.Minute,
		ReminderTimeout: time.Minute,
		ClassifyTimeout: time.Second,
		BreakSettings:   model.BreakSettings{Interval: time.Hour, Duration: 5 * time.Minute},
		PrimaryChannels: []string{"popup", "dashboard"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.engine = NewEngine(Deps{
		Store:      h.store,
		Classifier: cls,
		Hub:        h.hub,
		Clock:      h.clock,
		Logger:     logger.NewNopLogger(),
	}, opts)
	h.engine.Start(context.Background())
	return h
}

func (h *harness) dispatch(ev Event) {
	h.engine.Dispatch(context.Background(), ev)
}

// drain handles everything already queued.
func (h *harness) drain() {
	for {
		select {
		case ev := <-h.engine.queue:
			h.dispatch(ev)
		default:
			return
		}
	}
}

// next waits for one event from a background goroutine and handles it.
func (h *harness) next(t *testing.T) Event {
	select {
	case ev := <-h.engine.queue:
		h.dispatch(ev)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event arrived")
		return nil
	}
}

func (h *harness) connect(id, name string) *fakeChannel {
	ch := &fakeChannel{id: id, name: name}
	h.dispatch(ChannelConnected{Channel: ch})
	return ch
}

func (h *harness) send(channelID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	h.dispatch(ChannelMessage{ChannelID: channelID, Data: data})
}

func (h *harness) stats(domain string) (model.DomainStats, bool) {
	for _, e := range h.engine.stats.Snapshot() {
		if e.Domain == domain {
			return e.Stats, true
		}
	}
	return model.DomainStats{}, false
}
