// Package conflict answers whether a room or a set of members is already
// booked during a time window. It never writes.
package conflict

import (
	"context"

	"roomly/pkg/model"
)

// Overlaps reports whether the half-open intervals [a, b) and [c, d)
// intersect. Intervals that only touch (b == c) do not overlap.
func Overlaps(a, b, c, d int64) bool {
	return a < d && c < b
}

// MeetingFinder is the read side of the meeting store used for conflict
// lookups. Implementations may return a superset of the overlapping
// meetings; the checker re-applies Overlaps.
type MeetingFinder interface {
	FindOverlappingByRoom(ctx context.Context, roomID string, from, to int64) ([]*model.Meeting, error)
	FindOverlappingByParticipants(ctx context.Context, memberIDs []string, from, to int64) ([]*model.Meeting, error)
}

type Checker struct {
	meetings MeetingFinder
}

func NewChecker(meetings MeetingFinder) *Checker {
	return &Checker{meetings: meetings}
}

func (c *Checker) RoomHasConflict(ctx context.Context, roomID string, from, to int64) (bool, error) {
	meetings, err := c.meetings.FindOverlappingByRoom(ctx, roomID, from, to)
	if err != nil {
		return false, err
	}

	for _, m := range meetings {
		if m.RoomID == roomID && Overlaps(m.From, m.To, from, to) {
			return true, nil
		}
	}
	return false, nil
}

// ParticipantsWithConflict returns the candidates that attend some meeting
// overlapping [from, to), each at most once and in candidate order.
func (c *Checker) ParticipantsWithConflict(ctx context.Context, candidates []*model.Member, from, to int64) ([]*model.Member, error) {
	if len(candidates) == 0 {
		return []*model.Member{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, m := range candidates {
		ids = append(ids, m.ID)
	}

	meetings, err := c.meetings.FindOverlappingByParticipants(ctx, ids, from, to)
	if err != nil {
		return nil, err
	}

	busy := make(map[string]struct{})
	for _, m := range meetings {
		if !Overlaps(m.From, m.To, from, to) {
			continue
		}
		for _, id := range m.ParticipantIDs {
			busy[id] = struct{}{}
		}
	}

	conflicting := []*model.Member{}
	for _, m := range candidates {
		if _, ok := busy[m.ID]; ok {
			conflicting = append(conflicting, m)
			delete(busy, m.ID)
		}
	}
	return conflicting, nil
}
