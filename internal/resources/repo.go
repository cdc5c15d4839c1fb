package resources

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
)

// ListQuery filters resource listings.
type ListQuery struct {
	PublicOnly bool
}

// Repository handles resource metadata persistence.
type Repository interface {
	Create(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	FindByObjectKey(ctx context.Context, objectKey string) (*models.Resource, error)
	List(ctx context.Context, query ListQuery) ([]models.Resource, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a resource repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Resource{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}

func (r *repository) FindByObjectKey(ctx context.Context, objectKey string) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.WithContext(ctx).First(&resource, "object_key = ?", objectKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Resource, error) {
	q := r.db.WithContext(ctx).Model(&models.Resource{})
	if query.PublicOnly {
		q = q.Where("members_only = ?", false)
	}
	var out []models.Resource
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
