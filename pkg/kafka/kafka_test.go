package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomly/pkg/logger"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder_Build(t *testing.T) {
	msg, err := NewMessage().
		WithKey("room-1").
		WithValue(map[string]string{"name": "Standup"}).
		WithEventType("meeting.created").
		WithCorrelationID("").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "room-1", msg.Key)
	assert.JSONEq(t, `{"name":"Standup"}`, string(msg.Value))
	assert.Equal(t, "meeting.created", msg.GetEventType())
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	_, hasCorrelation := msg.Headers[HeaderCorrelationID]
	assert.False(t, hasCorrelation)
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: Connection Refused")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("bad payload")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(NewTransientError("x", nil)))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(NewPermanentError("i/o timeout", nil)))

	assert.True(t, ShouldRetry(errors.New("timeout"), 0, 3))
	assert.False(t, ShouldRetry(errors.New("timeout"), 3, 3))
	assert.False(t, ShouldRetry(errors.New("bad payload"), 0, 3))
}

func TestProducer_PublishValidatesAndRunsMiddleware(t *testing.T) {
	writer := &fakeWriter{}
	p := &Producer{writer: writer, topic: "meetings", log: logger.Discard()}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	msg, err := NewMessage().WithKey("k").WithValue("v").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, "meetings", seenTopic)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "k", string(writer.messages[0].Key))
	assert.Equal(t, msg.GetEventID(), headerValue(writer.messages[0], HeaderEventID))
}

func TestProducer_FailedPublishGoesToDLQ(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	dlq := &fakeWriter{}
	p := &Producer{writer: writer, dlqWriter: dlq, topic: "meetings", log: logger.Discard()}

	msg, err := NewMessage().WithKey("k").WithValue("v").Build()
	require.NoError(t, err)

	err = p.Publish(context.Background(), msg)
	require.Error(t, err)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "meetings", headerValue(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, "leader not available", headerValue(dlq.messages[0], HeaderDLQError))
	_, mutated := msg.Headers[HeaderDLQError]
	assert.False(t, mutated, "caller's headers must not change")
}

func TestProducer_Close(t *testing.T) {
	writer := &fakeWriter{}
	p := &Producer{writer: writer, topic: "meetings", log: logger.Discard()}

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}), ErrProducerClosed)
}

func TestConsumer_RetriesTransientThenDeadLetters(t *testing.T) {
	reader := &fakeReader{
		queue: []kafka.Message{
			{Topic: "meetings", Offset: 1, Key: []byte("a"), Value: []byte(`{}`)},
			{Topic: "meetings", Offset: 2, Key: []byte("b"), Value: []byte(`{}`)},
		},
		drained: make(chan struct{}),
	}
	dlq := &fakeWriter{}

	attempts := map[string]int{}
	var mu sync.Mutex
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[msg.Key]++
		if msg.Key == "a" {
			return errors.New("i/o timeout")
		}
		return nil
	}

	c := &Consumer{
		reader:     reader,
		dlqWriter:  dlq,
		topic:      "meetings",
		groupID:    "audit",
		maxRetries: 2,
		handler:    handler,
		log:        logger.Discard(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain queue")
	}
	cancel()
	<-done

	assert.Equal(t, 3, attempts["a"], "first try plus two retries")
	assert.Equal(t, 1, attempts["b"])
	assert.Equal(t, []int64{1, 2}, reader.committed)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "a", string(dlq.messages[0].Key))
	assert.Equal(t, "audit", headerValue(dlq.messages[0], "dlq-consumer-group"))

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
