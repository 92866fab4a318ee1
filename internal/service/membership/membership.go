package service_membership

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

type Repository interface {
	MemberByID(ctx context.Context, memberID uuid.UUID) (model.Member, error)
	MembersByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Member, error)
	GroupByID(ctx context.Context, groupID uuid.UUID) (model.Group, error)
}

type Service struct {
	repository Repository
}

func New(repository Repository) *Service {
	return &Service{repository: repository}
}

// IsMember returns the member record or Forbidden when userID does not belong to groupID.
func (s *Service) IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error) {
	m, err := s.repository.MemberByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Member{}, apperr.Forbidden("not a member of this group")
		}
		return model.Member{}, apperr.Internal("failed to load member", err)
	}
	if m.GroupID != groupID {
		return model.Member{}, apperr.Forbidden("not a member of this group")
	}
	return m, nil
}

func (s *Service) Member(ctx context.Context, memberID uuid.UUID) (model.Member, error) {
	m, err := s.repository.MemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Member{}, apperr.NotFound("member not found")
		}
		return model.Member{}, apperr.Internal("failed to load member", err)
	}
	return m, nil
}

func (s *Service) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.Member, error) {
	members, err := s.repository.MembersByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("failed to list members", err)
	}
	return members, nil
}

func (s *Service) GetGroup(ctx context.Context, groupID uuid.UUID) (model.Group, error) {
	g, err := s.repository.GroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Group{}, apperr.NotFound("group not found")
		}
		return model.Group{}, apperr.Internal("failed to load group", err)
	}
	return g, nil
}
