package plans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
)

// Repository handles membership plan persistence.
type Repository interface {
	Create(ctx context.Context, plan *models.MembershipPlan) error
	Update(ctx context.Context, plan *models.MembershipPlan) error
	List(ctx context.Context, query ListQuery) ([]models.MembershipPlan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	FindBySlug(ctx context.Context, slug string) (*models.MembershipPlan, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ListQuery configures plan list queries.
type ListQuery struct {
	ActiveOnly bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a plan repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) Update(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.MembershipPlan, error) {
	q := r.db.WithContext(ctx).Model(&models.MembershipPlan{})
	if query.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var plans []models.MembershipPlan
	if err := q.Order("sort_order ASC, name ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.MembershipPlan, error) {
	if slug == "" {
		return nil, nil
	}
	var plan models.MembershipPlan
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.MembershipPlan{}).
		Where("id = ?", id).
		Update("active", false).Error
}
