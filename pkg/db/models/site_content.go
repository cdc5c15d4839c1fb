package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SiteContent is an editable content block rendered by the public site.
// Body holds the block's structured payload keyed by section.
type SiteContent struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key       string          `gorm:"column:key;not null;uniqueIndex"`
	Title     string          `gorm:"column:title;not null"`
	Body      json.RawMessage `gorm:"column:body;type:jsonb"`
	Published bool            `gorm:"column:published;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
