package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// MembershipApplication is a prospective member's submission, tracked from
// intake through payment and approval.
type MembershipApplication struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName       string                  `gorm:"column:first_name;not null"`
	LastName        string                  `gorm:"column:last_name;not null"`
	Email           string                  `gorm:"type:text;not null;index"`
	Phone           *string                 `gorm:"column:phone"`
	Message         *string                 `gorm:"column:message"`
	PlanID          *uuid.UUID              `gorm:"column:plan_id;type:uuid;index"`
	Status          enums.ApplicationStatus `gorm:"column:status;type:application_status;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus     `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	StripeSessionID *string                 `gorm:"column:stripe_session_id;index"`
	PaidAt          *time.Time              `gorm:"column:paid_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
