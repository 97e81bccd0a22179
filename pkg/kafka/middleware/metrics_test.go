package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"roomly/pkg/kafka"
	"roomly/pkg/logger"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	var m Metrics
	produce := m.ProducerMiddleware()
	consume := m.ConsumerMiddleware()
	ctx := context.Background()

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	assert.NoError(t, produce(ctx, kafka.Message{}, ok))
	assert.Error(t, produce(ctx, kafka.Message{}, fail))
	assert.NoError(t, consume(ctx, kafka.Message{}, ok))
	assert.NoError(t, consume(ctx, kafka.Message{}, ok))

	s := m.Snapshot()
	assert.EqualValues(t, 1, s.Published)
	assert.EqualValues(t, 1, s.PublishFailed)
	assert.EqualValues(t, 2, s.Consumed)
	assert.EqualValues(t, 0, s.ConsumeFailed)

	m.Log(logger.Discard())
}

func TestLoggingMiddleware_PassesErrorsThrough(t *testing.T) {
	mw := LoggingConsumerMiddleware(logger.Discard())
	want := errors.New("boom")

	got := mw(context.Background(), kafka.Message{Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return want
	})
	assert.Equal(t, want, got)
}
