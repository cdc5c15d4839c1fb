package plans

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

// ServiceParams groups dependencies for the plan service.
type ServiceParams struct {
	Repo Repository
}

// Service orchestrates membership plan management.
type Service struct {
	repo Repository
}

// NewService builds a plan service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo}, nil
}

// CreatePlanInput holds the metadata required to create a plan.
type CreatePlanInput struct {
	Name        string
	Slug        string
	Description *string
	Price       decimal.Decimal
	Currency    string
	Interval    enums.BillingInterval
	Features    []string
	SortOrder   int
}

func (s *Service) CreatePlan(ctx context.Context, input CreatePlanInput) (*models.MembershipPlan, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if !input.Interval.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing interval")
	}

	existing, err := s.repo.FindBySlug(ctx, input.Slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up plan slug")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "plan slug already in use")
	}

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "usd"
	}

	plan := &models.MembershipPlan{
		Name:        strings.TrimSpace(input.Name),
		Slug:        strings.TrimSpace(input.Slug),
		Description: input.Description,
		Price:       input.Price,
		Currency:    currency,
		Interval:    input.Interval,
		Features:    input.Features,
		Active:      true,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create plan")
	}
	return plan, nil
}

// UpdatePlanInput carries optional plan updates; nil fields are left untouched.
type UpdatePlanInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Features    []string
	Active      *bool
	SortOrder   *int
}

func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, input UpdatePlanInput) (*models.MembershipPlan, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		plan.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		plan.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		plan.Price = *input.Price
	}
	if input.Features != nil {
		plan.Features = input.Features
	}
	if input.Active != nil {
		plan.Active = *input.Active
	}
	if input.SortOrder != nil {
		plan.SortOrder = *input.SortOrder
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update plan")
	}
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id is required")
	}
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}
	return plan, nil
}

func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error) {
	plans, err := s.repo.List(ctx, ListQuery{ActiveOnly: activeOnly})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	return plans, nil
}

func (s *Service) DeactivatePlan(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPlan(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate plan")
	}
	return nil
}
