package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/internal/service"
	"productivity-pal-be/internal/websocket"
	"productivity-pal-be/pkg/activity"
	"productivity-pal-be/pkg/blobstore"
	"productivity-pal-be/pkg/classifier"
)

var ErrStopped = errors.New("tracker: engine stopped")

type Options struct {
	PersistInterval time.Duration
	ReminderTimeout time.Duration
	ClassifyTimeout time.Duration
	BreakSettings   model.BreakSettings
	PrimaryChannels []string
	QueueSize       int
}

type Deps struct {
	Store      blobstore.Store
	Classifier classifier.Classifier
	Hub        *websocket.Hub
	Publisher  activity.Publisher
	Clock      Clock
	Logger     logger.ILogger
}

// Engine owns all tracker state. Every mutation happens on the goroutine
// running Run (or on the caller of Dispatch in tests).
type Engine struct {
	clock  Clock
	hub    *websocket.Hub
	store  blobstore.Store
	logger logger.ILogger

	categories service.ICategoryService
	stats      service.IStatsService
	visits     service.IVisitService
	breaks     service.IBreakService
	router     *Router

	queue   chan Event
	seq     uint64
	primary map[string]bool

	persistInterval time.Duration
	persistTimer    Timer

	// aiCtx bounds in-flight classifications; canceled on suspend.
	aiCtx    context.Context
	aiCancel context.CancelFunc

	stopOnce sync.Once
	done     chan struct{}
}

func NewEngine(deps Deps, opts Options) *Engine {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	if deps.Publisher == nil {
		deps.Publisher = activity.NopPublisher{}
	}
	if deps.Classifier == nil {
		deps.Classifier = classifier.Disabled{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}

	e := &Engine{
		clock:           deps.Clock,
		hub:             deps.Hub,
		store:           deps.Store,
		logger:          deps.Logger,
		queue:           make(chan Event, opts.QueueSize),
		primary:         make(map[string]bool),
		persistInterval: opts.PersistInterval,
		done:            make(chan struct{}),
	}
	for _, name := range opts.PrimaryChannels {
		e.primary[name] = true
	}
	e.aiCtx, e.aiCancel = context.WithCancel(context.Background())

	e.categories = service.NewCategoryService(deps.Store, deps.Classifier, opts.ClassifyTimeout, deps.Logger)
	e.stats = service.NewStatsService(e.categories, deps.Store, deps.Hub, deps.Publisher, deps.Logger)
	e.visits = service.NewVisitService()
	e.breaks = service.NewBreakService(deps.Store, deps.Hub, e, deps.Publisher, opts.BreakSettings, opts.ReminderTimeout, deps.Logger)
	e.router = NewRouter(e.stats, e.breaks, deps.Hub, e.classifyAsync, deps.Logger)
	return e
}

// Start restores persisted state and arms the persist timer. Storage
// failures are logged; the engine starts empty rather than not at all.
func (e *Engine) Start(ctx context.Context) {
	if err := e.categories.Restore(ctx); err != nil {
		e.logger.Error("Engine", "Failed to restore category overrides", map[string]interface{}{"error": err.Error()})
	}
	if err := e.stats.Restore(ctx); err != nil {
		e.logger.Error("Engine", "Failed to restore website stats", map[string]interface{}{"error": err.Error()})
	}
	if err := e.breaks.Restore(ctx, e.clock.Now()); err != nil {
		e.logger.Error("Engine", "Failed to restore break settings", map[string]interface{}{"error": err.Error()})
	}
	e.armPersist()
	e.logger.Info("Engine", "Tracker started", nil)
}

// Run consumes the queue until Suspend is handled or ctx ends.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.teardown(context.Background())
			return
		case ev := <-e.queue:
			e.Dispatch(ctx, ev)
			if _, ok := ev.(Suspend); ok {
				return
			}
		}
	}
}

// Post queues ev for the loop. It reports false once the engine stopped.
func (e *Engine) Post(ev Event) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.queue <- ev:
		return true
	case <-e.done:
		return false
	}
}

// Do runs fn on the loop and waits for it.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	if !e.Post(c) {
		return ErrStopped
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrStopped
	}
}

// Done is closed once the engine has torn down.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) Dispatch(ctx context.Context, ev Event) {
	e.seq++
	now := e.clock.Now()

	switch ev := ev.(type) {
	case TabFocused:
		e.applyTransition(e.visits.OnTabFocused(ev.TabID, ev.URL, now), now)
	case TabNavigated:
		e.applyTransition(e.visits.OnTabNavigated(ev.TabID, ev.URL, now), now)
	case TabClosed:
		e.applyTransition(e.visits.OnTabClosed(ev.TabID, now), now)

	case ChannelConnected:
		e.hub.Register(ev.Channel)
		if e.primary[ev.Channel.Name()] {
			msg := dto.NewInitialStats(e.stats.Snapshot(), e.stats.Score(), e.breaks.State())
			if err := e.hub.Send(ev.Channel.ID(), msg); err != nil {
				e.logger.Warn("Engine", "Failed to send initial stats", map[string]interface{}{"channel_id": ev.Channel.ID(), "error": err.Error()})
			}
		}
	case ChannelDisconnected:
		e.hub.Unregister(ev.ChannelID)
	case ChannelMessage:
		e.router.Route(ctx, ev.ChannelID, ev.Data, e.seq, now)

	case TimerFired:
		e.breaks.OnTimer(ev.Kind, ev.Token, now)
	case NotificationClicked:
		e.breaks.OnNotificationButton(ev.NotificationID, ev.ButtonIndex, now)
	case NotificationClosed:
		e.breaks.OnNotificationClosed(ev.NotificationID)

	case CategoryClassified:
		e.stats.SetCategory(ctx, ev.Domain, ev.Category, ev.Seq, "ai")

	case PersistTick:
		e.persist(ctx)
		e.armPersist()

	case Suspend:
		e.teardown(ctx)

	case call:
		ev.fn()
		close(ev.done)
	}
}

// Schedule arms a one-shot timer that comes back as TimerFired.
func (e *Engine) Schedule(kind, token string, after time.Duration) func() {
	t := e.clock.AfterFunc(after, func() {
		e.Post(TimerFired{Kind: kind, Token: token})
	})
	return func() { t.Stop() }
}

// Connected, Received and Disconnected make the engine the websocket inbox.
func (e *Engine) Connected(ch websocket.Channel) {
	if !e.Post(ChannelConnected{Channel: ch}) {
		ch.Close()
	}
}

func (e *Engine) Received(channelID string, data []byte) {
	e.Post(ChannelMessage{ChannelID: channelID, Data: data})
}

func (e *Engine) Disconnected(channelID string) {
	e.Post(ChannelDisconnected{ChannelID: channelID})
}

// HandleBrowserEvent maps an ingested browser event onto the loop.
func (e *Engine) HandleBrowserEvent(event dto.BrowserEventRequest) {
	switch event.Type {
	case dto.BrowserEventTabFocused:
		e.Post(TabFocused{TabID: event.TabID, URL: event.URL})
	case dto.BrowserEventTabNavigated:
		e.Post(TabNavigated{TabID: event.TabID, URL: event.URL})
	case dto.BrowserEventTabClosed:
		e.Post(TabClosed{TabID: event.TabID})
	case dto.BrowserEventNotificationClicked:
		e.Post(NotificationClicked{NotificationID: event.NotificationID, ButtonIndex: event.ButtonIndex})
	case dto.BrowserEventNotificationClosed:
		e.Post(NotificationClosed{NotificationID: event.NotificationID})
	default:
		e.logger.Debug("Engine", "Ignoring browser event", map[string]interface{}{"type": event.Type})
	}
}

func (e *Engine) StatsView(ctx context.Context) (dto.StatsUpdateMessage, error) {
	var msg dto.StatsUpdateMessage
	err := e.Do(ctx, func() {
		msg = dto.NewStatsUpdate(e.stats.Snapshot(), e.stats.Score())
	})
	return msg, err
}

func (e *Engine) BreakView(ctx context.Context) (dto.BreakStatusMessage, error) {
	var msg dto.BreakStatusMessage
	err := e.Do(ctx, func() {
		msg = dto.NewBreakStatus(e.breaks.State())
	})
	return msg, err
}

func (e *Engine) applyTransition(tr service.VisitTransition, now time.Time) {
	if tr.Closed != nil {
		e.stats.CloseVisit(*tr.Closed)
	}
	if tr.Opened != nil {
		e.breaks.CheckReminder(now, true)
	}
}

func (e *Engine) classifyAsync(domain string, seq uint64) {
	go func() {
		category := e.categories.ClassifyWithAI(e.aiCtx, domain)
		e.Post(CategoryClassified{Domain: domain, Category: category, Seq: seq})
	}()
}

func (e *Engine) persist(ctx context.Context) {
	if err := e.stats.Persist(ctx); err != nil {
		e.logger.Error("Engine", "Failed to persist website stats", map[string]interface{}{"error": err.Error()})
	}
}

func (e *Engine) armPersist() {
	if e.persistInterval <= 0 {
		return
	}
	e.persistTimer = e.clock.AfterFunc(e.persistInterval, func() {
		e.Post(PersistTick{})
	})
}

type flusher interface {
	Flush(ctx context.Context) error
}

// teardown closes the current visit, cancels timers, drops every channel and
// writes the stats one last time. It runs at most once.
func (e *Engine) teardown(ctx context.Context) {
	e.stopOnce.Do(func() {
		now := e.clock.Now()
		if tr := e.visits.Stop(now); tr.Closed != nil {
			e.stats.CloseVisit(*tr.Closed)
		}
		e.breaks.Shutdown()
		if e.persistTimer != nil {
			e.persistTimer.Stop()
		}
		e.aiCancel()
		e.hub.CloseAll()

		e.persist(ctx)
		if f, ok := e.store.(flusher); ok {
			if err := f.Flush(ctx); err != nil {
				e.logger.Error("Engine", "Failed to flush blob store", map[string]interface{}{"error": err.Error()})
			}
		}

		close(e.done)
		e.logger.Info("Engine", "Tracker suspended", nil)
	})
}
