package events

import (
	"context"

	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// NoopPublisher drops events; it backs EVENT_BACKEND=none.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(_ context.Context, event model.MeetingEvent) error {
	if event.Meeting != nil {
		p.log.Debug("Meeting event dropped", "type", event.Type, "meeting_id", event.Meeting.ID)
	}
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
