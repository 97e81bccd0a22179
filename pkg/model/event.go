package model

const (
	EventMeetingCreated = "meeting.created"
	EventMeetingDeleted = "meeting.deleted"
)

// MeetingEvent is the payload published when a meeting is booked or removed.
type MeetingEvent struct {
	Type    string   `json:"type"`
	Meeting *Meeting `json:"meeting"`
}
