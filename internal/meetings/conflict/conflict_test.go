package conflict

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomly/pkg/model"
)

type fakeFinder struct {
	meetings           []*model.Meeting
	err                error
	participantCalls   int
	lastParticipantIDs []string
}

func (f *fakeFinder) FindOverlappingByRoom(_ context.Context, roomID string, _, _ int64) ([]*model.Meeting, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Meeting
	for _, m := range f.meetings {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

// FindOverlappingByParticipants deliberately ignores the window so the
// checker's own overlap filtering is exercised.
func (f *fakeFinder) FindOverlappingByParticipants(_ context.Context, memberIDs []string, _, _ int64) ([]*model.Meeting, error) {
	f.participantCalls++
	f.lastParticipantIDs = memberIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.meetings, nil
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d int64
		want       bool
	}{
		{"identical", 100, 200, 100, 200, true},
		{"partial left", 100, 200, 50, 150, true},
		{"partial right", 100, 200, 150, 250, true},
		{"contained", 100, 200, 120, 180, true},
		{"containing", 120, 180, 100, 200, true},
		{"touching end", 100, 200, 200, 300, false},
		{"touching start", 200, 300, 100, 200, false},
		{"disjoint", 100, 200, 300, 400, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b, tt.c, tt.d))
			assert.Equal(t, tt.want, Overlaps(tt.c, tt.d, tt.a, tt.b), "overlap must be symmetric")
		})
	}
}

func TestRoomHasConflict(t *testing.T) {
	finder := &fakeFinder{meetings: []*model.Meeting{
		{ID: "x", RoomID: "r1", ParticipantIDs: []string{"m1"}, From: 100, To: 200},
	}}
	checker := NewChecker(finder)
	ctx := context.Background()

	busy, err := checker.RoomHasConflict(ctx, "r1", 150, 250)
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = checker.RoomHasConflict(ctx, "r1", 200, 300)
	require.NoError(t, err)
	assert.False(t, busy, "back-to-back meetings are allowed")

	busy, err = checker.RoomHasConflict(ctx, "r2", 150, 250)
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestRoomHasConflict_PropagatesStoreError(t *testing.T) {
	checker := NewChecker(&fakeFinder{err: errors.New("db down")})

	_, err := checker.RoomHasConflict(context.Background(), "r1", 0, 10)
	assert.EqualError(t, err, "db down")
}

func TestParticipantsWithConflict_EmptyInputSkipsQuery(t *testing.T) {
	finder := &fakeFinder{}
	checker := NewChecker(finder)

	got, err := checker.ParticipantsWithConflict(context.Background(), nil, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, finder.participantCalls)
}

func TestParticipantsWithConflict_DedupedInCandidateOrder(t *testing.T) {
	alice := &model.Member{ID: "a", Name: "Alice"}
	bob := &model.Member{ID: "b", Name: "Bob"}
	carol := &model.Member{ID: "c", Name: "Carol"}

	finder := &fakeFinder{meetings: []*model.Meeting{
		{ID: "1", RoomID: "r1", ParticipantIDs: []string{"c", "a"}, From: 100, To: 200},
		{ID: "2", RoomID: "r2", ParticipantIDs: []string{"a", "c"}, From: 150, To: 250},
		{ID: "3", RoomID: "r3", ParticipantIDs: []string{"b"}, From: 300, To: 400},
	}}
	checker := NewChecker(finder)

	got, err := checker.ParticipantsWithConflict(context.Background(), []*model.Member{alice, bob, carol}, 120, 220)
	require.NoError(t, err)

	assert.Equal(t, []*model.Member{alice, carol}, got)
	assert.Equal(t, []string{"a", "b", "c"}, finder.lastParticipantIDs)
}

func TestParticipantsWithConflict_NoneBusy(t *testing.T) {
	finder := &fakeFinder{meetings: []*model.Meeting{
		{ID: "1", RoomID: "r1", ParticipantIDs: []string{"a"}, From: 0, To: 100},
	}}
	checker := NewChecker(finder)

	got, err := checker.ParticipantsWithConflict(context.Background(), []*model.Member{{ID: "a", Name: "Alice"}}, 100, 200)
	require.NoError(t, err)
	assert.Empty(t, got)
}
