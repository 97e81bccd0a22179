package errors

import "errors"

var (
	ErrNotFound = errors.New("meeting not found")

	ErrInvalidID = errors.New("invalid meeting ID format")

	ErrEmptyParticipants = errors.New("no participants given for this meeting")

	ErrMissingRoom = errors.New("no room specified for this meeting")

	ErrInvalidTimeRange = errors.New("invalid time range")

	ErrMissingTarget = errors.New("at least roomId or participantIds must be provided")

	ErrRoomUnavailable = errors.New("room already booked during this time slot")

	ErrParticipantsUnavailable = errors.New("participants already booked during this time slot")

	ErrUnknownParticipants = errors.New("unknown participant ids")

	// ErrSlotLocked means another request currently holds a lock on one of
	// the resources being booked.
	ErrSlotLocked = errors.New("slot is locked by another request")

	ErrLockExpired = errors.New("slot lock expired before the meeting was stored")
)

// Error codes surfaced to API clients for availability conflicts.
const (
	CodeRoomUnavailable         = "ROOM_UNAVAILABLE"
	CodeParticipantsUnavailable = "PARTICIPANTS_UNAVAILABLE"
	CodeUnknownParticipants     = "UNKNOWN_PARTICIPANTS"
)
