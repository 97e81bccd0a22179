package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockRoomRepository struct {
	createFunc     func(ctx context.Context, room *model.Room) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc    func(ctx context.Context) ([]*model.Room, error)
	findByNameFunc func(ctx context.Context, name string) (*model.Room, error)
	updateFunc     func(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = "65f000000000000000000a01"
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) FindByName(ctx context.Context, name string) (*model.Room, error) {
	if m.findByNameFunc != nil {
		return m.findByNameFunc(ctx, name)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return &model.Room{ID: id, Name: update.Name}, nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func newTestService(repo *mockRoomRepository) RoomService {
	cfg := &config.Config{Log: logger.Discard()}
	return NewRoomService(repo, validator.NewRoomValidator(), cfg)
}

func statusOf(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return 0
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestCreate_NormalizesNameAndAssignsID(t *testing.T) {
	var stored string
	repo := &mockRoomRepository{
		createFunc: func(_ context.Context, room *model.Room) error {
			stored = room.Name
			room.ID = "65f000000000000000000a01"
			return nil
		},
	}
	svc := newTestService(repo)

	room := &model.Room{Name: "  Blue   Room "}
	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != "Blue Room" {
		t.Errorf("expected normalized name %q, got %q", "Blue Room", stored)
	}
	if room.ID == "" {
		t.Error("expected ID to be assigned")
	}
}

func TestCreate_DuplicateNameIsConflict(t *testing.T) {
	created := false
	repo := &mockRoomRepository{
		findByNameFunc: func(_ context.Context, name string) (*model.Room, error) {
			return &model.Room{ID: "65f000000000000000000a09", Name: name}, nil
		},
		createFunc: func(context.Context, *model.Room) error {
			created = true
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.Create(context.Background(), &model.Room{Name: "Blue Room"})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if apperrors.AsAppError(err).Message != "Room with this name already exists" {
		t.Errorf("unexpected message: %s", apperrors.AsAppError(err).Message)
	}
	if !errors.Is(err, roomserrors.ErrDuplicateName) {
		t.Error("expected ErrDuplicateName cause")
	}
	if created {
		t.Error("duplicate room must not be written")
	}
}

func TestCreate_StoreRaceOnUniqueIndexIsConflict(t *testing.T) {
	repo := &mockRoomRepository{
		createFunc: func(context.Context, *model.Room) error {
			return roomserrors.ErrDuplicateName
		},
	}

	err := newTestService(repo).Create(context.Background(), &model.Room{Name: "Blue Room"})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockRoomRepository{})

	err := svc.Create(context.Background(), &model.Room{Name: "   "})
	if statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCreate_StoreFailureIsInternal(t *testing.T) {
	repo := &mockRoomRepository{
		findByNameFunc: func(context.Context, string) (*model.Room, error) {
			return nil, errors.New("connection reset")
		},
	}

	err := newTestService(repo).Create(context.Background(), &model.Room{Name: "Blue Room"})
	if statusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		repo   error
		status int
	}{
		{"empty id", "", nil, http.StatusBadRequest},
		{"not found", "65f000000000000000000a01", roomserrors.ErrNotFound, http.StatusNotFound},
		{"invalid id", "abc", roomserrors.ErrInvalidID, http.StatusBadRequest},
		{"store failure", "65f000000000000000000a01", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRoomRepository{
				findByIDFunc: func(context.Context, string) (*model.Room, error) {
					return nil, tt.repo
				},
			}
			_, err := newTestService(repo).GetByID(context.Background(), tt.id)
			if statusOf(err) != tt.status {
				t.Errorf("expected status %d, got %v", tt.status, err)
			}
		})
	}
}

func TestUpdate_RenameToOwnNameIsAllowed(t *testing.T) {
	const id = "65f000000000000000000a01"
	repo := &mockRoomRepository{
		findByNameFunc: func(_ context.Context, name string) (*model.Room, error) {
			return &model.Room{ID: id, Name: name}, nil
		},
	}

	room, err := newTestService(repo).Update(context.Background(), id, &model.RoomUpdate{Name: "Blue Room"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.Name != "Blue Room" {
		t.Errorf("expected updated name, got %q", room.Name)
	}
}

func TestUpdate_RenameToTakenNameIsConflict(t *testing.T) {
	repo := &mockRoomRepository{
		findByNameFunc: func(_ context.Context, name string) (*model.Room, error) {
			return &model.Room{ID: "65f000000000000000000a02", Name: name}, nil
		},
	}

	_, err := newTestService(repo).Update(context.Background(), "65f000000000000000000a01", &model.RoomUpdate{Name: "Blue Room"})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestUpdate_MissingRoom(t *testing.T) {
	repo := &mockRoomRepository{
		updateFunc: func(context.Context, string, *model.RoomUpdate) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		},
	}

	_, err := newTestService(repo).Update(context.Background(), "65f000000000000000000a01", &model.RoomUpdate{Name: "Blue Room"})
	if statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRoomRepository{
		deleteFunc: func(_ context.Context, id string) error {
			if id == "65f000000000000000000a01" {
				return nil
			}
			return roomserrors.ErrNotFound
		},
	}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), "65F000000000000000000A01"); err != nil {
		t.Fatalf("expected delete to succeed for upper-case id, got %v", err)
	}
	if err := svc.Delete(context.Background(), "65f000000000000000000a02"); statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
