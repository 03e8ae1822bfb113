package enums

import "fmt"

// TopUpStatus tracks a deferred wallet submission awaiting funding.
type TopUpStatus string

const (
	TopUpStatusPending    TopUpStatus = "pending"
	TopUpStatusProcessing TopUpStatus = "processing"
	TopUpStatusReplayed   TopUpStatus = "replayed"
	TopUpStatusFailed     TopUpStatus = "failed"
)

var validTopUpStatuses = []TopUpStatus{
	TopUpStatusPending,
	TopUpStatusProcessing,
	TopUpStatusReplayed,
	TopUpStatusFailed,
}

// String implements fmt.Stringer.
func (s TopUpStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TopUpStatus.
func (s TopUpStatus) IsValid() bool {
	for _, candidate := range validTopUpStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTopUpStatus converts raw input into a TopUpStatus.
func ParseTopUpStatus(value string) (TopUpStatus, error) {
	for _, candidate := range validTopUpStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid top-up status %q", value)
}
