package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// MembershipPlan captures the local metadata for a membership tier.
type MembershipPlan struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Slug        string                `gorm:"column:slug;not null;uniqueIndex"`
	Description *string               `gorm:"column:description"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Currency    string                `gorm:"column:currency;not null;default:'usd'"`
	Interval    enums.BillingInterval `gorm:"column:interval;type:billing_interval;not null"`
	Features    pq.StringArray        `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	Active      bool                  `gorm:"column:active;not null;default:true"`
	SortOrder   int                   `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
