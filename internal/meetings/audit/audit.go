// Package audit consumes meeting events and writes them to the structured
// log, giving operators a trail of every booking and cancellation.
package audit

import (
	"context"
	"sync"

	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type Recorder struct {
	log *logger.Logger

	mu     sync.Mutex
	counts map[string]int64
}

func NewRecorder(log *logger.Logger) *Recorder {
	return &Recorder{
		log:    log,
		counts: make(map[string]int64),
	}
}

// Handle is a kafka.MessageHandler. Undecodable or empty events are permanent
// failures and go straight to the dead letter topic.
func (r *Recorder) Handle(_ context.Context, msg kafka.Message) error {
	var event model.MeetingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.Meeting == nil {
		return kafka.NewPermanentError("meeting event has no meeting", nil)
	}

	eventType := event.Type
	if eventType == "" {
		eventType = msg.GetEventType()
	}

	r.log.Info("Meeting event",
		"event_type", eventType,
		"event_id", msg.GetEventID(),
		"correlation_id", msg.GetCorrelationID(),
		"meeting_id", event.Meeting.ID,
		"room_id", event.Meeting.RoomID,
		"participants", event.Meeting.ParticipantIDs,
		"from", event.Meeting.From,
		"to", event.Meeting.To,
	)

	r.mu.Lock()
	r.counts[eventType]++
	r.mu.Unlock()
	return nil
}

// Counts returns how many events of each type were recorded.
func (r *Recorder) Counts() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}
