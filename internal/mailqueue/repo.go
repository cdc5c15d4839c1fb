package mailqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// Repository handles queued mail persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Enqueue(ctx context.Context, message *models.MailMessage) error
	ListQueued(ctx context.Context, limit int) ([]models.MailMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, terminal bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a mail queue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Enqueue(ctx context.Context, message *models.MailMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) ListQueued(ctx context.Context, limit int) ([]models.MailMessage, error) {
	if limit <= 0 {
		limit = 25
	}
	var out []models.MailMessage
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.MailStatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MailMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  enums.MailStatusSent,
			"sent_at": sentAt,
		}).Error
}

// MarkFailed bumps the attempt counter and records the failure reason. When
// terminal is true the message leaves the queue for good.
func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, terminal bool) error {
	status := enums.MailStatusQueued
	if terminal {
		status = enums.MailStatusFailed
	}
	return r.db.WithContext(ctx).
		Model(&models.MailMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}
