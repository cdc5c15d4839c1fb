package enums

import "fmt"

// BillingInterval is the renewal cadence attached to a membership plan.
// Lifetime plans are sold as one-off payments and never expire.
type BillingInterval string

const (
	BillingIntervalMonthly  BillingInterval = "monthly"
	BillingIntervalYearly   BillingInterval = "yearly"
	BillingIntervalLifetime BillingInterval = "lifetime"
)

var validBillingIntervals = []BillingInterval{
	BillingIntervalMonthly,
	BillingIntervalYearly,
	BillingIntervalLifetime,
}

// IsValid reports whether the value matches the canonical billing interval enum.
func (i BillingInterval) IsValid() bool {
	for _, candidate := range validBillingIntervals {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsRecurring reports whether plans on this interval renew over time.
func (i BillingInterval) IsRecurring() bool {
	return i != BillingIntervalLifetime
}

// ParseBillingInterval converts the raw string to BillingInterval.
func ParseBillingInterval(value string) (BillingInterval, error) {
	for _, candidate := range validBillingIntervals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing interval %q", value)
}
