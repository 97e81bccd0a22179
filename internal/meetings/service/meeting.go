package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"roomly/internal/meetings/calendar"
	"roomly/internal/meetings/conflict"
	meetingserrors "roomly/internal/meetings/errors"
	"roomly/internal/meetings/events"
	"roomly/internal/meetings/lock"
	"roomly/internal/meetings/repository"
	"roomly/internal/meetings/validator"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

const (
	msgRoomUnavailable   = "The selected room is already booked during this time slot."
	msgBothAvailable     = "Both room and participants are available."
	msgCreateFailed      = "An error occurred while creating the meeting"
	msgAvailabilityError = "An error occurred while checking availability."
	msgSlotLocked        = "This slot is currently being booked by another request, please retry"
)

type MeetingService interface {
	Create(ctx context.Context, req *model.CreateMeetingRequest) (*model.Meeting, error)
	CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResult, error)
	GetByID(ctx context.Context, id string) (*model.Meeting, error)
	List(ctx context.Context, filter model.MeetingFilter) ([]*model.Meeting, error)
	Delete(ctx context.Context, id string) error
	RoomCalendar(ctx context.Context, roomID string) (string, error)
}

// RoomFinder resolves room references. It reports unknown rooms with
// roomserrors.ErrNotFound.
type RoomFinder interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

// MemberFinder returns the members that exist among ids, in any order.
type MemberFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Member, error)
}

type meetingService struct {
	repo      repository.MeetingRepository
	rooms     RoomFinder
	members   MemberFinder
	checker   *conflict.Checker
	locker    lock.Locker
	publisher events.Publisher
	validator *validator.MeetingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewMeetingService(
	repo repository.MeetingRepository,
	rooms RoomFinder,
	members MemberFinder,
	locker lock.Locker,
	publisher events.Publisher,
	validator *validator.MeetingValidator,
	cfg *config.Config,
) MeetingService {
	return &meetingService{
		repo:      repo,
		rooms:     rooms,
		members:   members,
		checker:   conflict.NewChecker(repo),
		locker:    locker,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create books a room for a set of members. Checks run in a fixed order and
// the first failure is returned; nothing is written unless all pass. The
// room and every participant stay locked from the conflict checks until the
// insert completes.
func (s *meetingService) Create(ctx context.Context, req *model.CreateMeetingRequest) (*model.Meeting, error) {
	name := sanitizer.NormalizeName(req.Name)
	roomID := sanitizer.NormalizeID(req.RoomID)
	participantIDs := sanitizer.NormalizeIDs(req.ParticipantIDs)

	if len(participantIDs) == 0 {
		return nil, errEmptyParticipants()
	}
	if roomID == "" {
		return nil, apperrors.InvalidInput("No room specified for this meeting").WithCause(meetingserrors.ErrMissingRoom)
	}
	if req.From >= req.To {
		return nil, errInvalidTimeRange()
	}

	candidate := &model.Meeting{
		Name:           name,
		RoomID:         roomID,
		ParticipantIDs: participantIDs,
		From:           req.From,
		To:             req.To,
	}
	if err := s.validator.Validate(candidate); err != nil {
		s.cfg.Log.Warn("Meeting validation failed", "room_id", roomID, "error", err)
		return nil, apperrors.Validation("Invalid meeting", map[string]any{"errors": err})
	}

	lease, err := s.locker.Acquire(ctx, lock.MeetingKeys(roomID, participantIDs))
	if err != nil {
		if errors.Is(err, meetingserrors.ErrSlotLocked) {
			s.cfg.Log.Warn("Meeting slot is locked", "room_id", roomID, "error", err)
			return nil, apperrors.Conflict(msgSlotLocked).WithCause(err)
		}
		s.cfg.Log.Error("Failed to acquire slot locks", "room_id", roomID, "error", err)
		return nil, apperrors.Internal(msgCreateFailed, err)
	}
	defer func() {
		if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot locks", "room_id", roomID, "error", releaseErr)
		}
	}()

	// The locks lapse after their TTL, so the checks and the insert must
	// finish within it.
	lockedCtx, cancel := context.WithTimeout(ctx, s.lockTTL())
	defer cancel()

	var meeting *model.Meeting
	err = s.repo.ExecuteTransaction(lockedCtx, func(txCtx context.Context) error {
		meeting = nil

		busy, err := s.checker.RoomHasConflict(txCtx, roomID, req.From, req.To)
		if err != nil {
			return apperrors.Internal(msgCreateFailed, err)
		}
		if busy {
			return errRoomUnavailable()
		}

		participants, err := s.resolveParticipants(txCtx, participantIDs)
		if err != nil {
			return err
		}

		conflicting, err := s.checker.ParticipantsWithConflict(txCtx, participants, req.From, req.To)
		if err != nil {
			return apperrors.Internal(msgCreateFailed, err)
		}
		if len(conflicting) > 0 {
			return apperrors.New(meetingserrors.CodeParticipantsUnavailable,
				fmt.Sprintf("Members %s already booked for another meeting in this slot.", joinNames(conflicting)),
				http.StatusBadRequest,
			).WithCause(meetingserrors.ErrParticipantsUnavailable)
		}

		room, err := s.rooms.FindByID(txCtx, roomID)
		if err != nil {
			if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
				return apperrors.NotFoundWithID("Room", roomID)
			}
			return apperrors.Internal(msgCreateFailed, err)
		}

		if err := lease.Confirm(txCtx); err != nil {
			if errors.Is(err, meetingserrors.ErrLockExpired) {
				return apperrors.Conflict(msgSlotLocked).WithCause(err)
			}
			return apperrors.Internal(msgCreateFailed, err)
		}

		m := &model.Meeting{
			Name:           candidate.Name,
			RoomID:         room.ID,
			ParticipantIDs: memberIDs(participants),
			From:           req.From,
			To:             req.To,
		}
		if err := s.repo.Create(txCtx, m); err != nil {
			return apperrors.Internal(msgCreateFailed, err)
		}
		meeting = m
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal(msgCreateFailed, err)
		}
		s.logCreateFailure(roomID, err)
		return nil, err
	}

	s.cfg.Log.Info("Meeting created successfully",
		"id", meeting.ID,
		"room_id", meeting.RoomID,
		"participants", len(meeting.ParticipantIDs),
		"from", meeting.From,
		"to", meeting.To,
	)
	s.publish(ctx, model.EventMeetingCreated, meeting)
	return meeting, nil
}

func (s *meetingService) lockTTL() time.Duration {
	if s.cfg.LockTTL > 0 {
		return s.cfg.LockTTL
	}
	return config.DefaultLockTTL
}

// CheckAvailability reports whether a room and a set of members are free in
// a window. It never writes.
func (s *meetingService) CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResult, error) {
	roomID := sanitizer.NormalizeID(req.RoomID)
	participantIDs := sanitizer.NormalizeIDs(req.ParticipantIDs)

	if req.From >= req.To {
		return nil, errInvalidTimeRange()
	}
	if roomID == "" && len(participantIDs) == 0 {
		return nil, apperrors.InvalidInput("At least roomId or participantIds must be provided.").WithCause(meetingserrors.ErrMissingTarget)
	}

	ids := participantIDs
	if roomID != "" {
		ids = append([]string{roomID}, participantIDs...)
	}
	if err := s.validator.ValidateIDs("ids", ids...); err != nil {
		return nil, apperrors.Validation("Invalid availability request", map[string]any{"errors": err})
	}

	roomAvailable := true
	if roomID != "" {
		busy, err := s.checker.RoomHasConflict(ctx, roomID, req.From, req.To)
		if err != nil {
			s.cfg.Log.Error("Failed to check room availability", "room_id", roomID, "error", err)
			return nil, apperrors.Internal(msgAvailabilityError, err)
		}
		roomAvailable = !busy
	}

	var conflicting []*model.Member
	if len(participantIDs) > 0 {
		participants, err := s.members.FindByIDs(ctx, participantIDs)
		if err != nil {
			s.cfg.Log.Error("Failed to resolve participants", "error", err)
			return nil, apperrors.Internal(msgAvailabilityError, err)
		}
		conflicting, err = s.checker.ParticipantsWithConflict(ctx, orderByIDs(participants, participantIDs), req.From, req.To)
		if err != nil {
			s.cfg.Log.Error("Failed to check participant availability", "error", err)
			return nil, apperrors.Internal(msgAvailabilityError, err)
		}
	}
	participantsAvailable := len(conflicting) == 0

	var messages []string
	if !roomAvailable {
		messages = append(messages, msgRoomUnavailable)
	}
	if !participantsAvailable {
		messages = append(messages,
			fmt.Sprintf("Members %s are already booked for another meeting in this slot.", joinNames(conflicting)))
	}

	result := &model.AvailabilityResult{
		Available: roomAvailable && participantsAvailable,
		Message:   msgBothAvailable,
	}
	if len(messages) > 0 {
		result.Message = strings.Join(messages, " ")
	}

	s.cfg.Log.Debug("Availability checked",
		"room_id", roomID,
		"participants", len(participantIDs),
		"available", result.Available,
	)
	return result, nil
}

func (s *meetingService) GetByID(ctx context.Context, id string) (*model.Meeting, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Meeting ID cannot be empty")
	}

	meeting, err := s.repo.FindByID(ctx, sanitizer.NormalizeID(id))
	if err != nil {
		return nil, s.translateLookupError(id, "Failed to retrieve meeting", err)
	}
	return meeting, nil
}

func (s *meetingService) List(ctx context.Context, filter model.MeetingFilter) ([]*model.Meeting, error) {
	filter.RoomID = sanitizer.NormalizeID(filter.RoomID)
	filter.MemberID = sanitizer.NormalizeID(filter.MemberID)

	if filter.From != nil && filter.To != nil && *filter.From >= *filter.To {
		return nil, errInvalidTimeRange()
	}
	for field, id := range map[string]string{"room_id": filter.RoomID, "member_id": filter.MemberID} {
		if id == "" {
			continue
		}
		if err := s.validator.ValidateIDs(field, id); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", field, id))
		}
	}

	meetings, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list meetings", "room_id", filter.RoomID, "member_id", filter.MemberID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve meetings", err)
	}
	return meetings, nil
}

func (s *meetingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Meeting ID cannot be empty")
	}

	meeting, err := s.repo.Delete(ctx, sanitizer.NormalizeID(id))
	if err != nil {
		return s.translateLookupError(id, "Failed to delete meeting", err)
	}

	s.cfg.Log.Info("Meeting deleted successfully", "id", meeting.ID, "room_id", meeting.RoomID)
	s.publish(ctx, model.EventMeetingDeleted, meeting)
	return nil
}

// RoomCalendar renders every meeting held in the room as iCalendar text.
func (s *meetingService) RoomCalendar(ctx context.Context, roomID string) (string, error) {
	roomID = sanitizer.NormalizeID(roomID)

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound):
			return "", apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomserrors.ErrInvalidID):
			return "", apperrors.InvalidInput("Invalid room ID format")
		}
		s.cfg.Log.Error("Failed to load room for calendar", "room_id", roomID, "error", err)
		return "", apperrors.Internal("Failed to build room calendar", err)
	}

	meetings, err := s.repo.Find(ctx, model.MeetingFilter{RoomID: room.ID})
	if err != nil {
		s.cfg.Log.Error("Failed to load meetings for calendar", "room_id", roomID, "error", err)
		return "", apperrors.Internal("Failed to build room calendar", err)
	}

	var ids []string
	for _, m := range meetings {
		ids = append(ids, m.ParticipantIDs...)
	}
	names := map[string]string{}
	if ids = sanitizer.NormalizeIDs(ids); len(ids) > 0 {
		members, err := s.members.FindByIDs(ctx, ids)
		if err != nil {
			s.cfg.Log.Error("Failed to load members for calendar", "room_id", roomID, "error", err)
			return "", apperrors.Internal("Failed to build room calendar", err)
		}
		for _, m := range members {
			names[m.ID] = m.Name
		}
	}

	return calendar.Render(room, meetings, names, s.now()), nil
}

// --- Helpers ---

// resolveParticipants loads the members behind ids in request order. Unknown
// ids are dropped with a warning unless RejectUnknownParticipants is set.
func (s *meetingService) resolveParticipants(ctx context.Context, ids []string) ([]*model.Member, error) {
	found, err := s.members.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(msgCreateFailed, err)
	}
	participants := orderByIDs(found, ids)

	if len(participants) < len(ids) {
		unknown := missingIDs(participants, ids)
		if s.cfg.RejectUnknownParticipants {
			return nil, apperrors.New(meetingserrors.CodeUnknownParticipants,
				fmt.Sprintf("Unknown participants: %s", strings.Join(unknown, ", ")),
				http.StatusBadRequest,
			).WithDetails(map[string]any{"ids": unknown}).WithCause(meetingserrors.ErrUnknownParticipants)
		}
		s.cfg.Log.Warn("Dropping unknown participants", "ids", unknown)
	}

	if len(participants) == 0 {
		return nil, errEmptyParticipants()
	}
	return participants, nil
}

func (s *meetingService) publish(ctx context.Context, eventType string, meeting *model.Meeting) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), model.MeetingEvent{Type: eventType, Meeting: meeting}); err != nil {
		s.cfg.Log.Warn("Failed to publish meeting event", "type", eventType, "id", meeting.ID, "error", err)
	}
}

func (s *meetingService) translateLookupError(id, internalMsg string, err error) error {
	switch {
	case errors.Is(err, meetingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Meeting", id)
	case errors.Is(err, meetingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid meeting ID format")
	}
	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}

func (s *meetingService) logCreateFailure(roomID string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() >= 500 {
		s.cfg.Log.Error("Failed to create meeting", "room_id", roomID, "error", err)
		return
	}
	s.cfg.Log.Warn("Meeting rejected", "room_id", roomID, "code", appErr.Code, "reason", appErr.Message)
}

func errEmptyParticipants() *apperrors.AppError {
	return apperrors.InvalidInput("No participants given for this meeting").WithCause(meetingserrors.ErrEmptyParticipants)
}

func errInvalidTimeRange() *apperrors.AppError {
	return apperrors.InvalidInput("Invalid time range").WithCause(meetingserrors.ErrInvalidTimeRange)
}

func errRoomUnavailable() *apperrors.AppError {
	return apperrors.New(meetingserrors.CodeRoomUnavailable, msgRoomUnavailable, http.StatusBadRequest).
		WithCause(meetingserrors.ErrRoomUnavailable)
}

func orderByIDs(members []*model.Member, ids []string) []*model.Member {
	byID := make(map[string]*model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	ordered := make([]*model.Member, 0, len(members))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

func missingIDs(found []*model.Member, ids []string) []string {
	present := make(map[string]struct{}, len(found))
	for _, m := range found {
		present[m.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func memberIDs(members []*model.Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

func joinNames(members []*model.Member) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}
