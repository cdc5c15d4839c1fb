package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
)

// ListQuery filters site content listings.
type ListQuery struct {
	PublishedOnly bool
}

// Repository handles site content persistence.
type Repository interface {
	Create(ctx context.Context, content *models.SiteContent) error
	Update(ctx context.Context, content *models.SiteContent) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SiteContent, error)
	FindByKey(ctx context.Context, key string) (*models.SiteContent, error)
	List(ctx context.Context, query ListQuery) ([]models.SiteContent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a content repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, content *models.SiteContent) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *repository) Update(ctx context.Context, content *models.SiteContent) error {
	return r.db.WithContext(ctx).Save(content).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SiteContent{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SiteContent, error) {
	var content models.SiteContent
	err := r.db.WithContext(ctx).First(&content, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func (r *repository) FindByKey(ctx context.Context, key string) (*models.SiteContent, error) {
	var content models.SiteContent
	err := r.db.WithContext(ctx).First(&content, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.SiteContent, error) {
	q := r.db.WithContext(ctx).Model(&models.SiteContent{})
	if query.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	var out []models.SiteContent
	if err := q.Order("key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
