// Package events announces meeting lifecycle changes to a message broker.
package events

import (
	"context"
	"fmt"

	"roomly/pkg/config"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
	kafka_middleware "roomly/pkg/kafka/middleware"
	"roomly/pkg/model"
)

const source = "roomly"

type Publisher interface {
	Publish(ctx context.Context, event model.MeetingEvent) error
	Close() error
}

// New builds the publisher selected by cfg.EventBackend, wrapped in a circuit
// breaker so a broker outage does not slow every booking down.
func New(cfg *config.Config) (Publisher, error) {
	var (
		publisher Publisher
		err       error
	)

	switch cfg.EventBackend {
	case config.EventBackendNone, "":
		return NewNoopPublisher(cfg.Log), nil
	case config.EventBackendKafka:
		publisher, err = newKafkaBackend(cfg)
	case config.EventBackendRabbitMQ:
		publisher, err = NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.Log)
	default:
		return nil, fmt.Errorf("unknown event backend %q", cfg.EventBackend)
	}
	if err != nil {
		return nil, err
	}

	return NewBreakerPublisher(publisher, DefaultBreakerSettings(), cfg.Log), nil
}

func newKafkaBackend(cfg *config.Config) (Publisher, error) {
	kcfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kcfg, cfg.MeetingsTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	return NewKafkaPublisher(producer), nil
}
