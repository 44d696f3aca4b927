package service

import (
	"context"
	"encoding/json"
	"fmt"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// BrowserEventSink receives decoded browser events. Implemented by the tracker engine.
type BrowserEventSink interface {
	HandleBrowserEvent(event dto.BrowserEventRequest)
}

type IIngestService interface {
	// Publish hands a browser event to the consumer and returns once the sink
	// has accepted it. It does not wait for the event to be applied.
	Publish(ctx context.Context, event dto.BrowserEventRequest) error
	Consume(ctx context.Context, sink BrowserEventSink) error
}

// NewIngestBus returns the in-process bus browser events travel on. Publish
// blocks until the consumer acks, so events reach the sink in publish order.
func NewIngestBus(log watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: true,
	}, log)
}

type ingestService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewIngestService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IIngestService {
	return &ingestService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (s *ingestService) Publish(ctx context.Context, event dto.BrowserEventRequest) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode browser event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *ingestService) Consume(ctx context.Context, sink BrowserEventSink) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg, sink)
		}
	}()

	return nil
}

func (s *ingestService) processMessage(msg *message.Message, sink BrowserEventSink) {
	var event dto.BrowserEventRequest
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.logger.Error("IngestService", "Failed to unmarshal browser event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying will not help
		return
	}
	if err := dto.Validate(event); err != nil {
		s.logger.Warn("IngestService", "Dropping invalid browser event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	sink.HandleBrowserEvent(event)
	msg.Ack()
}
