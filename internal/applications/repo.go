package applications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// Repository handles membership application persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, application *models.MembershipApplication) error
	Update(ctx context.Context, application *models.MembershipApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.MembershipApplication, error)
	List(ctx context.Context, query ListQuery) ([]models.MembershipApplication, error)
	MarkPaid(ctx context.Context, id uuid.UUID, sessionID string, paidAt time.Time) error
}

// ListQuery configures application list queries.
type ListQuery struct {
	Status *enums.ApplicationStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an application repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, application *models.MembershipApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *repository) Update(ctx context.Context, application *models.MembershipApplication) error {
	return r.db.WithContext(ctx).Save(application).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	var application models.MembershipApplication
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&application).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

func (r *repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.MembershipApplication, error) {
	if sessionID == "" {
		return nil, nil
	}
	var application models.MembershipApplication
	if err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&application).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.MembershipApplication, error) {
	q := r.db.WithContext(ctx).Model(&models.MembershipApplication{})
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	var out []models.MembershipApplication
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid records payment state on the application. Re-running with the same
// session id overwrites the same fields, so webhook redeliveries are harmless.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, sessionID string, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MembershipApplication{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"stripe_session_id": sessionID,
			"paid_at":           paidAt,
		}).Error
}
