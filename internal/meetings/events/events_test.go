package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomly/pkg/config"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
)

func sampleEvent() model.MeetingEvent {
	return model.MeetingEvent{
		Type: model.EventMeetingCreated,
		Meeting: &model.Meeting{
			ID:             "507f1f77bcf86cd799439099",
			Name:           "Planning",
			RoomID:         "507f1f77bcf86cd799439011",
			ParticipantIDs: []string{"507f1f77bcf86cd799439012"},
			From:           100,
			To:             200,
		},
	}
}

type fakeProducer struct {
	published []kafka.Message
	err       error
	closed    bool
}

func (f *fakeProducer) Publish(_ context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_BuildsKeyedMessage(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaPublisher(producer)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	require.NoError(t, publisher.Publish(ctx, sampleEvent()))
	require.Len(t, producer.published, 1)

	msg := producer.published[0]
	assert.Equal(t, "507f1f77bcf86cd799439011", msg.Key)
	assert.Equal(t, model.EventMeetingCreated, msg.GetEventType())
	assert.Equal(t, "req-42", msg.GetCorrelationID())
	assert.Equal(t, source, msg.Headers[kafka.HeaderSource])

	var decoded model.MeetingEvent
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "Planning", decoded.Meeting.Name)

	require.NoError(t, publisher.Close())
	assert.True(t, producer.closed)
}

func TestKafkaPublisher_RejectsEventWithoutMeeting(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaPublisher(producer)

	err := publisher.Publish(context.Background(), model.MeetingEvent{Type: model.EventMeetingDeleted})
	assert.Error(t, err)
	assert.Empty(t, producer.published)
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQPublisher_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &RabbitMQPublisher{channel: ch, exchange: "roomly.events", log: logger.Discard()}

	require.NoError(t, publisher.Publish(context.Background(), sampleEvent()))

	assert.Equal(t, "roomly.events", ch.exchange)
	assert.Equal(t, model.EventMeetingCreated, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded model.MeetingEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, sampleEvent().Meeting.ID, decoded.Meeting.ID)

	require.NoError(t, publisher.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQPublisher_WrapsChannelError(t *testing.T) {
	cause := errors.New("channel closed")
	publisher := &RabbitMQPublisher{channel: &fakeChannel{err: cause}, exchange: "x", log: logger.Discard()}

	err := publisher.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, cause)
}

type failingPublisher struct {
	calls int
	err   error
}

func (f *failingPublisher) Publish(context.Context, model.MeetingEvent) error {
	f.calls++
	return f.err
}

func (f *failingPublisher) Close() error { return nil }

func TestBreakerPublisher_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &failingPublisher{err: errors.New("broker down")}
	publisher := NewBreakerPublisher(next, BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, logger.Discard())

	for i := 0; i < 2; i++ {
		err := publisher.Publish(context.Background(), sampleEvent())
		assert.EqualError(t, err, "broker down")
	}
	assert.Equal(t, gobreaker.StateOpen, publisher.State())

	err := publisher.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, ErrPublisherUnavailable)
	assert.Equal(t, 2, next.calls, "open breaker must not reach the broker")
}

func TestBreakerPublisher_PassesThroughSuccess(t *testing.T) {
	next := &failingPublisher{}
	publisher := NewBreakerPublisher(next, DefaultBreakerSettings(), logger.Discard())

	require.NoError(t, publisher.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, gobreaker.StateClosed, publisher.State())
	assert.Equal(t, 1, next.calls)
}

func TestNew_SelectsBackend(t *testing.T) {
	cfg := &config.Config{EventBackend: config.EventBackendNone, Log: logger.Discard()}

	publisher, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &NoopPublisher{}, publisher)
	assert.NoError(t, publisher.Publish(context.Background(), sampleEvent()))

	cfg.EventBackend = "carrier-pigeon"
	_, err = New(cfg)
	assert.Error(t, err)
}
