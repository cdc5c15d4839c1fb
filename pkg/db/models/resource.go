package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a downloadable file shared with members, stored in GCS.
type Resource struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description *string   `gorm:"column:description"`
	ObjectKey   string    `gorm:"column:object_key;not null;uniqueIndex"`
	ContentType string    `gorm:"column:content_type;not null"`
	SizeBytes   *int64    `gorm:"column:size_bytes"`
	MembersOnly bool      `gorm:"column:members_only;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
