package members

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// Repository handles member persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	List(ctx context.Context, query ListQuery) ([]models.Member, error)
	ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Member, error)
	ListActiveWithExpiry(ctx context.Context) ([]models.Member, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) error
}

// ListQuery configures member list queries.
type ListQuery struct {
	Status *enums.MembershipStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a member repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	if email == "" {
		return nil, nil
	}
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Member, error) {
	q := r.db.WithContext(ctx).Model(&models.Member{})
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	var out []models.Member
	if err := q.Order("joined_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpiredBefore returns active members whose expiry is strictly before the
// cutoff. Members without an expiry never lapse and are excluded.
func (r *repository) ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Member, error) {
	var out []models.Member
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.MembershipStatusActive).
		Where("membership_expiry IS NOT NULL").
		Where("membership_expiry < ?", cutoff).
		Order("membership_expiry ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListActiveWithExpiry(ctx context.Context) ([]models.Member, error) {
	var out []models.Member
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.MembershipStatusActive).
		Where("membership_expiry IS NOT NULL").
		Order("membership_expiry ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("status", status).Error
}
