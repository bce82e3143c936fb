package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher is the narrow contract the lifecycle services depend on.
// Emission is fire-and-forget: a failed publish must never surface to
// the caller or roll back a persisted state change.
type Publisher interface {
	Publish(ctx context.Context, eventType string, aggregateID string, payload interface{})
}

// Envelope is the wire shape of every published event.
type Envelope struct {
	Type        string      `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload"`
}

// WatermillPublisher publishes envelopes to a watermill message.Publisher
// (gochannel in-process by default, NATS or anything else watermill
// supports in deployment). Topic is prefix + "." + event type.
type WatermillPublisher struct {
	publisher   message.Publisher
	topicPrefix string
	logger      *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, topicPrefix string, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

func (p *WatermillPublisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

func (p *WatermillPublisher) Publish(ctx context.Context, eventType string, aggregateID string, payload interface{}) {
	envelope := Envelope{
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal domain event",
			slog.String("event_type", eventType),
			slog.String("aggregate_id", aggregateID),
			slog.Any("error", err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("event_type", eventType)
	msg.Metadata.Set("aggregate_id", aggregateID)

	if err := p.publisher.Publish(p.Topic(eventType), msg); err != nil {
		// Swallowed on purpose; the state change is already persisted.
		p.logger.ErrorContext(ctx, "failed to publish domain event",
			slog.String("event_type", eventType),
			slog.String("aggregate_id", aggregateID),
			slog.Any("error", err))
	}
}
