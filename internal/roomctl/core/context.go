package core

import (
	"fmt"

	"roomly/pkg/client"
)

// Clients bundles the HTTP clients a flow talks to.
type Clients struct {
	Rooms    *client.RoomClient
	Members  *client.MemberClient
	Meetings *client.MeetingClient
}

func NewClients(baseURL string) *Clients {
	return &Clients{
		Rooms:    client.NewRoomClient(baseURL),
		Members:  client.NewMemberClient(baseURL),
		Meetings: client.NewMeetingClient(baseURL),
	}
}

// FlowContext carries a flow's input, the intermediate values steps hand to
// each other, and the output returned to the caller.
type FlowContext struct {
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
	Clients *Clients
}

func NewFlowContext(input map[string]any, clients *Clients) *FlowContext {
	if input == nil {
		input = map[string]any{}
	}
	return &FlowContext{
		Input:   input,
		Process: make(map[string]any),
		Output:  make(map[string]any),
		Clients: clients,
	}
}

func (c *FlowContext) String(key string) string {
	s, _ := c.Input[key].(string)
	return s
}

func (c *FlowContext) Strings(key string) []string {
	switch v := c.Input[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (c *FlowContext) Int64(key string) (int64, error) {
	switch v := c.Input[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case nil:
		return 0, MissingParamErr(key)
	}
	return 0, fmt.Errorf("param [%v] must be an integer", key)
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("required param [%v] is missing", paramName)
}
