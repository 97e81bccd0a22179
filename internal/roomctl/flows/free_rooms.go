package flows

import (
	"net/http"
	"sync"

	"roomly/internal/roomctl/core"
	"roomly/pkg/model"
)

const (
	FreeRoomsFlow = "free_rooms"

	ROOMS = "rooms"

	MaxConcurrentProbes = 8
)

// FreeRooms lists every room that has no meeting overlapping [from, to).
type FreeRooms struct{}

func (FreeRooms) Name() string { return FreeRoomsFlow }

func (FreeRooms) Steps() []*core.Step {
	return []*core.Step{
		core.NewStep("list_rooms", ListRooms),
		core.NewStep("probe_rooms", ProbeRooms),
	}
}

func ListRooms(ctx *core.FlowContext) error {
	resp, err := ctx.Clients.Rooms.GetAll()
	if err != nil {
		return err
	}
	rooms, err := decodeData[[]*model.Room](resp, http.StatusOK)
	if err != nil {
		return err
	}
	ctx.Process[ROOMS] = rooms
	return nil
}

// ProbeRooms checks each room concurrently and keeps list order in the output.
func ProbeRooms(ctx *core.FlowContext) error {
	from, err := ctx.Int64(FROM)
	if err != nil {
		return err
	}
	to, err := ctx.Int64(TO)
	if err != nil {
		return err
	}
	rooms := ctx.Process[ROOMS].([]*model.Room)

	free := make([]bool, len(rooms))
	var (
		mu       sync.Mutex
		firstErr error
	)
	limiter := core.NewLimiter(MaxConcurrentProbes)
	for i, room := range rooms {
		limiter.Go(func() {
			ok, err := roomIsFree(ctx, room.ID, from, to)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			free[i] = ok
		})
	}
	limiter.Wait()
	if firstErr != nil {
		return firstErr
	}

	out := make([]*model.Room, 0, len(rooms))
	for i, room := range rooms {
		if free[i] {
			out = append(out, room)
		}
	}
	ctx.Output[ROOMS] = out
	return nil
}

func roomIsFree(ctx *core.FlowContext, roomID string, from, to int64) (bool, error) {
	resp, err := ctx.Clients.Meetings.Availability(model.AvailabilityRequest{
		RoomID: roomID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return false, err
	}
	result, err := decodeData[model.AvailabilityResult](resp, http.StatusOK)
	if err != nil {
		return false, err
	}
	return result.Available, nil
}
