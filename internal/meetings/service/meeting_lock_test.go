package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meetingserrors "roomly/internal/meetings/errors"
	"roomly/internal/meetings/lock"
	"roomly/internal/meetings/validator"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// stallingRooms runs stall on the first lookup, which happens after the
// conflict checks and before the insert.
type stallingRooms struct {
	fakeRooms
	stalled bool
	stall   func()
}

func (s *stallingRooms) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if !s.stalled {
		s.stalled = true
		s.stall()
	}
	return s.fakeRooms.FindByID(ctx, id)
}

type deadlineRecordingRepository struct {
	*memoryMeetingRepository
	deadline time.Time
	ok       bool
}

func (r *deadlineRecordingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.deadline, r.ok = ctx.Deadline()
	return fn(ctx)
}

func TestCreate_LockExpiredMidCreateIsNotStored(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{Log: logger.Discard(), LockTTL: config.DefaultLockTTL}
	repo := &memoryMeetingRepository{}
	members := &fakeMembers{byID: map[string]*model.Member{
		alice: {ID: alice, Name: "Alice"},
	}}
	rooms := &stallingRooms{fakeRooms: fakeRooms{roomA: {ID: roomA, Name: "Aurora"}}}
	svc := NewMeetingService(repo, rooms, members, lock.NewRedisLocker(client, cfg.LockTTL), &recordingPublisher{}, validator.NewMeetingValidator(), cfg)

	var secondErr error
	rooms.stall = func() {
		mr.FastForward(cfg.LockTTL + time.Second)
		_, secondErr = svc.Create(context.Background(), &model.CreateMeetingRequest{
			Name: "Second", RoomID: roomA, ParticipantIDs: []string{alice}, From: 150, To: 250,
		})
	}

	_, err := svc.Create(context.Background(), &model.CreateMeetingRequest{
		Name: "First", RoomID: roomA, ParticipantIDs: []string{alice}, From: 100, To: 200,
	})

	require.NoError(t, secondErr)
	requireAppError(t, err, http.StatusConflict, apperrors.CodeConflict)
	assert.ErrorIs(t, err, meetingserrors.ErrLockExpired)
	assert.Equal(t, 1, repo.count())
}

func TestCreate_TransactionBoundedByLockTTL(t *testing.T) {
	cfg := &config.Config{Log: logger.Discard(), LockTTL: 5 * time.Second}
	repo := &deadlineRecordingRepository{memoryMeetingRepository: &memoryMeetingRepository{}}
	members := &fakeMembers{byID: map[string]*model.Member{
		alice: {ID: alice, Name: "Alice"},
	}}
	svc := NewMeetingService(repo, fakeRooms{roomA: {ID: roomA, Name: "Aurora"}}, members, newTryLocker(), &recordingPublisher{}, validator.NewMeetingValidator(), cfg)

	started := time.Now()
	_, err := svc.Create(context.Background(), &model.CreateMeetingRequest{
		Name: "Sync", RoomID: roomA, ParticipantIDs: []string{alice}, From: 1, To: 2,
	})
	require.NoError(t, err)

	require.True(t, repo.ok, "transaction must run under a deadline")
	assert.WithinDuration(t, started.Add(cfg.LockTTL), repo.deadline, time.Second)
}
