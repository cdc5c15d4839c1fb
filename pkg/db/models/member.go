package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// Member is an approved, paying (or lifetime) member of the organization.
// A nil MembershipExpiry means the membership never lapses.
type Member struct {
	ID               uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicationID    *uuid.UUID             `gorm:"column:application_id;type:uuid;index"`
	FirstName        string                 `gorm:"column:first_name;not null"`
	LastName         string                 `gorm:"column:last_name;not null"`
	Email            string                 `gorm:"type:text;not null;uniqueIndex"`
	Phone            *string                `gorm:"column:phone"`
	Status           enums.MembershipStatus `gorm:"column:status;type:membership_status;not null;default:'pending'"`
	PlanID           *uuid.UUID             `gorm:"column:plan_id;type:uuid;index"`
	StripeCustomerID *string                `gorm:"column:stripe_customer_id;index"`
	MembershipExpiry *time.Time             `gorm:"column:membership_expiry;index"`
	JoinedAt         time.Time              `gorm:"column:joined_at;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
