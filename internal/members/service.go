package members

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

// ServiceParams groups dependencies for the member service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes member directory operations.
type Service struct {
	repo Repository
}

// NewService builds a member service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo}, nil
}

// GetMember returns a single member by id.
func (s *Service) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return member, nil
}

// ListMembers returns members, optionally filtered by status.
func (s *Service) ListMembers(ctx context.Context, status *enums.MembershipStatus) ([]models.Member, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid membership status")
	}
	out, err := s.repo.List(ctx, ListQuery{Status: status})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list members")
	}
	return out, nil
}

// Cancel marks a membership as cancelled. Expired and already cancelled
// memberships stay as they are.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	switch member.Status {
	case enums.MembershipStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "membership already cancelled")
	case enums.MembershipStatusExpired:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "membership already expired")
	}
	if err := s.repo.UpdateStatus(ctx, id, enums.MembershipStatusCancelled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to cancel membership")
	}
	member.Status = enums.MembershipStatusCancelled
	return member, nil
}
