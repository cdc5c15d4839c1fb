package mailqueue

import (
	"fmt"
	"time"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

const (
	TemplatePaymentConfirmation = "payment_confirmation"
	TemplateRenewalReminder     = "renewal_reminder"
	TemplateMembershipExpired   = "membership_expired"

	dateLayout = "January 2, 2006"
)

// NewPaymentConfirmation builds the queued confirmation mail sent once a
// checkout completes.
func NewPaymentConfirmation(toAddress, toName, planName string) *models.MailMessage {
	template := TemplatePaymentConfirmation
	body := fmt.Sprintf(
		"Dear %s,\n\nThank you for your payment. Your %s membership with Harborlight Community Alliance is now confirmed.\n\nYour application is being reviewed and you will hear from us shortly.\n\nWarm regards,\nHarborlight Community Alliance",
		toName, planName,
	)
	return &models.MailMessage{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   "Membership payment received",
		Body:      body,
		Template:  &template,
		Status:    enums.MailStatusQueued,
	}
}

// NewRenewalReminder builds the reminder mail sent ahead of a membership's
// expiry date.
func NewRenewalReminder(toAddress, toName string, daysLeft int, expiry time.Time) *models.MailMessage {
	template := TemplateRenewalReminder
	body := fmt.Sprintf(
		"Dear %s,\n\nYour Harborlight Community Alliance membership expires in %d days, on %s.\n\nRenew today to keep your member benefits without interruption.\n\nWarm regards,\nHarborlight Community Alliance",
		toName, daysLeft, expiry.UTC().Format(dateLayout),
	)
	return &models.MailMessage{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   fmt.Sprintf("Your membership expires in %d days", daysLeft),
		Body:      body,
		Template:  &template,
		Status:    enums.MailStatusQueued,
	}
}

// NewMembershipExpired builds the notice sent after a membership lapses.
func NewMembershipExpired(toAddress, toName string, expiredOn time.Time) *models.MailMessage {
	template := TemplateMembershipExpired
	body := fmt.Sprintf(
		"Dear %s,\n\nYour Harborlight Community Alliance membership expired on %s.\n\nWe would love to have you back. You can renew at any time from our membership page.\n\nWarm regards,\nHarborlight Community Alliance",
		toName, expiredOn.UTC().Format(dateLayout),
	)
	return &models.MailMessage{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   "Your membership has expired",
		Body:      body,
		Template:  &template,
		Status:    enums.MailStatusQueued,
	}
}
