package service

import (
	"context"
	"errors"

	memberserrors "roomly/internal/members/errors"
	"roomly/internal/members/repository"
	"roomly/internal/members/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

type MemberService interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	GetAll(ctx context.Context) ([]*model.Member, error)
	Update(ctx context.Context, id string, update *model.MemberUpdate) (*model.Member, error)
	Delete(ctx context.Context, id string) error
}

type memberService struct {
	repo      repository.MemberRepository
	validator *validator.MemberValidator
	cfg       *config.Config
}

func NewMemberService(
	repo repository.MemberRepository,
	validator *validator.MemberValidator,
	cfg *config.Config,
) MemberService {
	return &memberService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// Create stores the member. Names are not unique; an existing member with
// the same name only produces a warning.
func (s *memberService) Create(ctx context.Context, member *model.Member) error {
	member.ID = ""
	member.Name = sanitizer.NormalizeName(member.Name)

	if err := s.validator.Validate(member); err != nil {
		s.cfg.Log.Warn("Member validation failed", "name", member.Name, "error", err)
		return apperrors.Validation("Member validation failed", map[string]any{"errors": err})
	}

	count, err := s.repo.CountByName(ctx, member.Name)
	if err != nil {
		s.cfg.Log.Warn("Could not check for duplicate member names", "name", member.Name, "error", err)
	} else if count > 0 {
		s.cfg.Log.Warn("A member with this name already exists", "name", member.Name, "count", count)
	}

	if err := s.repo.Create(ctx, member); err != nil {
		s.cfg.Log.Error("Failed to create member", "name", member.Name, "error", err)
		return apperrors.Internal("Failed to create member", err)
	}

	s.cfg.Log.Info("Member created successfully", "id", member.ID, "name", member.Name)
	return nil
}

func (s *memberService) GetByID(ctx context.Context, id string) (*model.Member, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Member ID cannot be empty")
	}

	member, err := s.repo.FindByID(ctx, sanitizer.NormalizeID(id))
	if err != nil {
		return nil, s.lookupError(id, "Failed to retrieve member", err)
	}
	return member, nil
}

func (s *memberService) GetAll(ctx context.Context) ([]*model.Member, error) {
	members, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list members", "error", err)
		return nil, apperrors.Internal("Failed to retrieve members", err)
	}
	return members, nil
}

func (s *memberService) Update(ctx context.Context, id string, update *model.MemberUpdate) (*model.Member, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Member ID cannot be empty")
	}
	update.Name = sanitizer.NormalizeName(update.Name)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Member update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"errors": err})
	}

	member, err := s.repo.Update(ctx, sanitizer.NormalizeID(id), update)
	if err != nil {
		return nil, s.lookupError(id, "Failed to update member", err)
	}

	s.cfg.Log.Info("Member updated successfully", "id", member.ID, "name", member.Name)
	return member, nil
}

// Delete leaves existing meetings untouched; they keep the member id.
func (s *memberService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Member ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, sanitizer.NormalizeID(id)); err != nil {
		return s.lookupError(id, "Failed to delete member", err)
	}

	s.cfg.Log.Info("Member deleted successfully", "id", id)
	return nil
}

func (s *memberService) lookupError(id, internalMsg string, err error) error {
	if errors.Is(err, memberserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Member", id)
	}
	if errors.Is(err, memberserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid member ID format")
	}
	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}
