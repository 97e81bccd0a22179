package service

import (
	"context"
	"errors"

	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

const msgDuplicateName = "Room with this name already exists"

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context) ([]*model.Room, error)
	Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// Create rejects a room whose name exactly matches an existing one.
func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.ID = ""
	room.Name = sanitizer.NormalizeName(room.Name)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "name", room.Name, "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"errors": err})
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameFree(txCtx, room.Name, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, room); err != nil {
			if errors.Is(err, roomserrors.ErrDuplicateName) {
				return apperrors.Conflict(msgDuplicateName).WithCause(err)
			}
			return apperrors.Internal("Failed to create room", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Warn("Duplicate room name", "name", room.Name)
			return err
		}
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "name", room.Name)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, sanitizer.NormalizeID(id))
	if err != nil {
		return nil, s.translateLookupError(id, "Failed to retrieve room", err)
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	id = sanitizer.NormalizeID(id)
	update.Name = sanitizer.NormalizeName(update.Name)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"errors": err})
	}

	var updated *model.Room
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameFree(txCtx, update.Name, id); err != nil {
			return err
		}
		room, err := s.repo.Update(txCtx, id, update)
		if err != nil {
			if errors.Is(err, roomserrors.ErrDuplicateName) {
				return apperrors.Conflict(msgDuplicateName).WithCause(err)
			}
			return s.translateLookupError(id, "Failed to update room", err)
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "name", updated.Name)
	return updated, nil
}

// Delete does not cascade; meetings keep their reference to the room id.
func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, sanitizer.NormalizeID(id)); err != nil {
		return s.translateLookupError(id, "Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

// ensureNameFree fails with a conflict when another room (not selfID)
// already uses name.
func (s *roomService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to check for duplicate rooms", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return apperrors.Conflict(msgDuplicateName).
		WithDetails(map[string]any{"id": existing.ID}).
		WithCause(roomserrors.ErrDuplicateName)
}

func (s *roomService) translateLookupError(id, internalMsg string, err error) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	}
	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}
