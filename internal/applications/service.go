package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/internal/members"
	"github.com/harborlight-org/harborlight-backend/internal/plans"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the application service.
type ServiceParams struct {
	Repo              Repository
	MemberRepo        members.Repository
	PlanRepo          plans.Repository
	TransactionRunner txRunner
	Now               func() time.Time
}

// Service handles the membership application lifecycle: intake, payment
// bookkeeping, and the approve/reject decision that mints members.
type Service struct {
	repo       Repository
	memberRepo members.Repository
	planRepo   plans.Repository
	txRunner   txRunner
	now        func() time.Time
}

// NewService builds an application service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.MemberRepo == nil {
		return nil, errors.New("member repo is required")
	}
	if params.PlanRepo == nil {
		return nil, errors.New("plan repo is required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		repo:       params.Repo,
		memberRepo: params.MemberRepo,
		planRepo:   params.PlanRepo,
		txRunner:   params.TransactionRunner,
		now:        now,
	}, nil
}

// CreateApplicationInput holds an applicant's submission.
type CreateApplicationInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Message   *string
	PlanID    *uuid.UUID
}

func (s *Service) CreateApplication(ctx context.Context, input CreateApplicationInput) (*models.MembershipApplication, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if input.PlanID != nil {
		plan, err := s.planRepo.FindByID(ctx, *input.PlanID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
		}
		if plan == nil || !plan.Active {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan not available")
		}
	}

	application := &models.MembershipApplication{
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         email,
		Phone:         input.Phone,
		Message:       input.Message,
		PlanID:        input.PlanID,
		Status:        enums.ApplicationStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create application")
	}
	return application, nil
}

func (s *Service) GetApplication(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application id is required")
	}
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}
	if application == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	return application, nil
}

func (s *Service) ListApplications(ctx context.Context, status *enums.ApplicationStatus) ([]models.MembershipApplication, error) {
	out, err := s.repo.List(ctx, ListQuery{Status: status})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}
	return out, nil
}

// Approve promotes a paid application to a member. The membership expiry
// derives from the plan interval; lifetime plans never expire.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	application, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.Status == enums.ApplicationStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "application already approved")
	}
	if application.Status == enums.ApplicationStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "application already rejected")
	}
	if application.PaymentStatus != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "application has not been paid")
	}

	var expiry *time.Time
	if application.PlanID != nil {
		plan, planErr := s.planRepo.FindByID(ctx, *application.PlanID)
		if planErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, planErr, "load plan")
		}
		if plan != nil {
			expiry = expiryForInterval(plan.Interval, s.now())
		}
	}

	existing, err := s.memberRepo.FindByEmail(ctx, application.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up member email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a member with this email already exists")
	}

	member := &models.Member{
		ApplicationID:    &application.ID,
		FirstName:        application.FirstName,
		LastName:         application.LastName,
		Email:            application.Email,
		Phone:            application.Phone,
		Status:           enums.MembershipStatusActive,
		PlanID:           application.PlanID,
		MembershipExpiry: expiry,
		JoinedAt:         s.now(),
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if createErr := s.memberRepo.WithTx(tx).Create(ctx, member); createErr != nil {
			return createErr
		}
		application.Status = enums.ApplicationStatusApproved
		return s.repo.WithTx(tx).Update(ctx, application)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve application")
	}
	return member, nil
}

// Reject closes out an application without creating a member.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	application, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.Status != enums.ApplicationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "application already decided")
	}
	application.Status = enums.ApplicationStatusRejected
	if err := s.repo.Update(ctx, application); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject application")
	}
	return application, nil
}

func expiryForInterval(interval enums.BillingInterval, from time.Time) *time.Time {
	switch interval {
	case enums.BillingIntervalMonthly:
		t := from.AddDate(0, 1, 0)
		return &t
	case enums.BillingIntervalYearly:
		t := from.AddDate(1, 0, 0)
		return &t
	default:
		return nil
	}
}
