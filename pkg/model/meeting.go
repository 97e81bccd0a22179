package model

import "time"

// Meeting books one room for a set of members over the half-open interval
// [From, To). Room and participants are weak references by id.
type Meeting struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string    `json:"name" bson:"name" validate:"required,min=1,max=200"`
	RoomID         string    `json:"room" bson:"room_id" validate:"required,mongodb"`
	ParticipantIDs []string  `json:"participants" bson:"participant_ids" validate:"required,min=1,dive,mongodb"`
	From           int64     `json:"from" bson:"from"`
	To             int64     `json:"to" bson:"to" validate:"gtfield=From"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type CreateMeetingRequest struct {
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participantIds"`
	RoomID         string   `json:"roomId"`
	From           int64    `json:"from"`
	To             int64    `json:"to"`
}

type AvailabilityRequest struct {
	RoomID         string   `json:"roomId,omitempty"`
	ParticipantIDs []string `json:"participantIds,omitempty"`
	From           int64    `json:"from"`
	To             int64    `json:"to"`
}

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// MeetingFilter narrows a meeting listing. Empty ids and nil bounds match
// everything; From/To select meetings overlapping that window.
type MeetingFilter struct {
	RoomID   string
	MemberID string
	From     *int64
	To       *int64
}
