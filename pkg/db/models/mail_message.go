package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

// MailMessage is a queued outbound email drained by the mail worker.
type MailMessage struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ToAddress string           `gorm:"column:to_address;not null;index"`
	ToName    string           `gorm:"column:to_name;not null"`
	Subject   string           `gorm:"column:subject;not null"`
	Body      string           `gorm:"column:body;type:text;not null"`
	Template  *string          `gorm:"column:template"`
	Status    enums.MailStatus `gorm:"column:status;type:mail_status;not null;default:'queued';index"`
	Attempts  int              `gorm:"column:attempts;not null;default:0"`
	LastError *string          `gorm:"column:last_error"`
	SentAt    *time.Time       `gorm:"column:sent_at"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
