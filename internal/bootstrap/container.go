package bootstrap

import (
	"context"
	"fmt"
	"log"

	"productivity-pal-be/internal/config"
	"productivity-pal-be/internal/controller"
	"productivity-pal-be/internal/handler"
	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/internal/service"
	"productivity-pal-be/internal/tracker"
	"productivity-pal-be/internal/websocket"
	"productivity-pal-be/pkg/activity"
	"productivity-pal-be/pkg/blobstore"
	"productivity-pal-be/pkg/classifier"
	"productivity-pal-be/pkg/database"
	"productivity-pal-be/pkg/llm/factory"
	pktNats "productivity-pal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
)

const browserEventsTopic = "browser_events"

type Container struct {
	// Controllers
	TrackerController controller.ITrackerController
	ChannelHandler    *handler.ChannelHandler

	// Background Services (Exposed for main.go to run)
	Engine        *tracker.Engine
	IngestService service.IIngestService

	Hub    *websocket.Hub
	Store  *blobstore.AsyncWriter
	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Storage
	backend, err := newBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	store := blobstore.NewAsyncWriter(backend, sysLogger)
	log.Printf("[INFO] Using blob store: %s", cfg.Storage.Driver)

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := service.NewIngestBus(watermillLogger)

	c := &Container{Store: store, Logger: sysLogger}
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 4. Activity feed (optional)
	var publisher activity.Publisher = activity.NopPublisher{}
	if cfg.App.ActivityFeedEnabled {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = activity.NewNatsPublisher(natsPub, sysLogger)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 5. Classifier
	cls, err := newClassifier(cfg)
	if err != nil {
		log.Printf("[WARN] AI categorization disabled: %v", err)
		cls = classifier.Disabled{}
	}
	log.Printf("[INFO] Using AI Provider: %s", cfg.Ai.Provider)

	// 6. Tracker
	wsLogger := logger.NewIsolatedLogger(cfg.App.ChannelLogFilePath)
	c.Hub = websocket.NewHub(wsLogger)

	c.Engine = tracker.NewEngine(tracker.Deps{
		Store:      store,
		Classifier: cls,
		Hub:        c.Hub,
		Publisher:  publisher,
		Logger:     sysLogger,
	}, tracker.Options{
		PersistInterval: cfg.Tracker.StatsPersistInterval,
		ReminderTimeout: cfg.Tracker.ReminderTimeout,
		ClassifyTimeout: cfg.Ai.ClassifyTimeout,
		BreakSettings: model.BreakSettings{
			Interval: cfg.Tracker.BreakInterval,
			Duration: cfg.Tracker.BreakDuration,
		},
		PrimaryChannels: cfg.App.PrimaryChannelNames,
	})

	c.IngestService = service.NewIngestService(pubSub, browserEventsTopic, sysLogger)
	c.TrackerController = controller.NewTrackerController(c.IngestService, c.Engine)
	c.ChannelHandler = handler.NewChannelHandler(c.Engine, cfg.App.ChannelTokenSecret, wsLogger)

	return c, nil
}

// Close releases infrastructure. Call it after the engine has stopped.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if err := c.Store.Close(); err != nil {
		log.Printf("[WARN] Failed to close blob store: %v", err)
	}
}

func newBlobStore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "sqlite":
		return blobstore.NewSQLiteStore(cfg.Storage.SQLitePath)
	case "redis":
		return blobstore.NewRedisStore(context.Background(), cfg.Storage.RedisURL)
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Storage.Connection)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return blobstore.NewGormStore(db)
	default:
		return nil, fmt.Errorf("unknown blob store driver %q", cfg.Storage.Driver)
	}
}

func newClassifier(cfg *config.Config) (classifier.Classifier, error) {
	switch cfg.Ai.Provider {
	case "none":
		return classifier.Disabled{}, nil
	case "gemini":
		if cfg.Keys.GoogleGemini == "" {
			return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY is not set")
		}
		return classifier.NewGeminiClassifier(cfg.Keys.GoogleGemini, cfg.Ai.GeminiModel), nil
	default:
		provider, err := factory.NewLLMProvider(cfg.Ai.Provider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
		if err != nil {
			return nil, err
		}
		return classifier.NewLLMClassifier(provider, cfg.Ai.ClassifyModel), nil
	}
}
