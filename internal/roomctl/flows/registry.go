package flows

import "roomly/internal/roomctl/core"

func NewEngine() *core.Engine {
	return core.NewEngine(BookMeeting{}, FreeRooms{})
}
