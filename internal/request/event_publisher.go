package request

import (
	"context"
	"encoding/json"

	"github.com/SebastienDelgado/detachements-backend/internal/events"
	"github.com/segmentio/kafka-go"
)

// EventPublisher mirrors lifecycle transitions onto the audit stream.
// Publishing is best effort: callers log failures and move on.
type EventPublisher interface {
	PublishLifecycle(ctx context.Context, event events.RequestLifecycleEvent) error
}

type noopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) PublishLifecycle(context.Context, events.RequestLifecycleEvent) error {
	return nil
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) PublishLifecycle(
	ctx context.Context,
	event events.RequestLifecycleEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.RequestLifecycleTopic,
		Key:   []byte(event.RequestID),
		Value: payload,
	})
}
