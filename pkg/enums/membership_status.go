package enums

import "fmt"

// MembershipStatus describes where a member sits in the membership lifecycle.
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusPending   MembershipStatus = "pending"
	MembershipStatusExpired   MembershipStatus = "expired"
	MembershipStatusCancelled MembershipStatus = "cancelled"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusActive,
	MembershipStatusPending,
	MembershipStatusExpired,
	MembershipStatusCancelled,
}

// IsValid reports whether the value matches the canonical membership status enum.
func (s MembershipStatus) IsValid() bool {
	for _, candidate := range validMembershipStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMembershipStatus converts the raw string to MembershipStatus.
func ParseMembershipStatus(value string) (MembershipStatus, error) {
	for _, candidate := range validMembershipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership status %q", value)
}
