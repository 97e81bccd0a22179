package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

func buildMessage(t *testing.T, event model.MeetingEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey(event.Meeting.RoomID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID("req-1").
		Build()
	require.NoError(t, err)
	return msg
}

func TestRecorder_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(logger.New(logger.Config{Output: &buf}))

	meeting := &model.Meeting{
		ID:             "65f000000000000000000c01",
		Name:           "Planning",
		RoomID:         "65f000000000000000000a01",
		ParticipantIDs: []string{"65f000000000000000000b01"},
		From:           1000,
		To:             2000,
	}

	require.NoError(t, rec.Handle(context.Background(), buildMessage(t, model.MeetingEvent{Type: model.EventMeetingCreated, Meeting: meeting})))
	require.NoError(t, rec.Handle(context.Background(), buildMessage(t, model.MeetingEvent{Type: model.EventMeetingCreated, Meeting: meeting})))
	require.NoError(t, rec.Handle(context.Background(), buildMessage(t, model.MeetingEvent{Type: model.EventMeetingDeleted, Meeting: meeting})))

	assert.Equal(t, map[string]int64{
		model.EventMeetingCreated: 2,
		model.EventMeetingDeleted: 1,
	}, rec.Counts())
	assert.Contains(t, buf.String(), "65f000000000000000000c01")
	assert.Contains(t, buf.String(), "req-1")
}

func TestRecorder_MalformedPayloadIsPermanent(t *testing.T) {
	rec := NewRecorder(logger.Discard())

	err := rec.Handle(context.Background(), kafka.Message{Value: []byte("{not json"), Headers: map[string]string{}})

	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
	assert.Empty(t, rec.Counts())
}

func TestRecorder_MissingMeetingIsPermanent(t *testing.T) {
	rec := NewRecorder(logger.Discard())

	err := rec.Handle(context.Background(), kafka.Message{Value: []byte(`{"type":"meeting.created"}`), Headers: map[string]string{}})

	var kerr *kafka.KafkaError
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, kafka.ErrorTypePermanent, kerr.Type)
}
