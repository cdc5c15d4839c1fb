package enums

import "fmt"

// MailStatus tracks a queued outbound message through delivery.
type MailStatus string

const (
	MailStatusQueued MailStatus = "queued"
	MailStatusSent   MailStatus = "sent"
	MailStatusFailed MailStatus = "failed"
)

var validMailStatuses = []MailStatus{
	MailStatusQueued,
	MailStatusSent,
	MailStatusFailed,
}

// IsValid reports whether the value matches the canonical mail status enum.
func (s MailStatus) IsValid() bool {
	for _, candidate := range validMailStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMailStatus converts the raw string to MailStatus.
func ParseMailStatus(value string) (MailStatus, error) {
	for _, candidate := range validMailStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mail status %q", value)
}
