package events

import (
	"context"
	"fmt"

	"roomly/pkg/kafka"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
)

const schemaVersion = "1"

type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer messageProducer
}

func NewKafkaPublisher(producer messageProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys messages by room so all events of one room land on the same
// partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.MeetingEvent) error {
	if event.Meeting == nil {
		return fmt.Errorf("event %s has no meeting", event.Type)
	}

	msg, err := kafka.NewMessage().
		WithKey(event.Meeting.RoomID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
