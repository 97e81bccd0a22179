package flows

import (
	"fmt"
	"net/http"
	"strings"

	"roomly/internal/roomctl/core"
	"roomly/pkg/model"
)

const (
	BookMeetingFlow = "book_meeting"

	ROOM            = "room"
	NAME            = "name"
	PARTICIPANTS    = "participants"
	FROM            = "from"
	TO              = "to"
	IDEMPOTENCY_KEY = "idempotency_key"

	ROOM_ID = "room_id"
	MEETING = "meeting"
)

// BookMeeting resolves a room by id or name, confirms the slot is free and
// books it. The server re-checks availability, so a race between the two
// calls only costs a failed create.
type BookMeeting struct{}

func (BookMeeting) Name() string { return BookMeetingFlow }

func (BookMeeting) Steps() []*core.Step {
	return []*core.Step{
		core.NewStep("resolve_room", ResolveRoom),
		core.NewStep("check_availability", CheckSlot),
		core.NewStep("create_meeting", CreateMeeting),
	}
}

func ResolveRoom(ctx *core.FlowContext) error {
	room := strings.TrimSpace(ctx.String(ROOM))
	if room == "" {
		return core.MissingParamErr(ROOM)
	}
	if objectIDPattern.MatchString(room) {
		ctx.Process[ROOM_ID] = strings.ToLower(room)
		return nil
	}

	resp, err := ctx.Clients.Rooms.GetAll()
	if err != nil {
		return err
	}
	rooms, err := decodeData[[]*model.Room](resp, http.StatusOK)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		if strings.EqualFold(r.Name, room) {
			ctx.Process[ROOM_ID] = r.ID
			return nil
		}
	}
	return fmt.Errorf("no room named %q", room)
}

func CheckSlot(ctx *core.FlowContext) error {
	from, err := ctx.Int64(FROM)
	if err != nil {
		return err
	}
	to, err := ctx.Int64(TO)
	if err != nil {
		return err
	}

	resp, err := ctx.Clients.Meetings.Availability(model.AvailabilityRequest{
		RoomID:         ctx.Process[ROOM_ID].(string),
		ParticipantIDs: ctx.Strings(PARTICIPANTS),
		From:           from,
		To:             to,
	})
	if err != nil {
		return err
	}
	result, err := decodeData[model.AvailabilityResult](resp, http.StatusOK)
	if err != nil {
		return err
	}
	if !result.Available {
		return fmt.Errorf("slot unavailable: %s", result.Message)
	}
	return nil
}

func CreateMeeting(ctx *core.FlowContext) error {
	from, _ := ctx.Int64(FROM)
	to, _ := ctx.Int64(TO)

	resp, err := ctx.Clients.Meetings.Create(model.CreateMeetingRequest{
		Name:           ctx.String(NAME),
		ParticipantIDs: ctx.Strings(PARTICIPANTS),
		RoomID:         ctx.Process[ROOM_ID].(string),
		From:           from,
		To:             to,
	}, ctx.String(IDEMPOTENCY_KEY))
	if err != nil {
		return err
	}
	meeting, err := decodeData[*model.Meeting](resp, http.StatusCreated)
	if err != nil {
		return err
	}
	ctx.Output[MEETING] = meeting
	return nil
}
