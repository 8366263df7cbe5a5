package enums

import "fmt"

// ClientStatus flags whether a client record is in active use at the desk.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

var validClientStatuses = []ClientStatus{
	ClientStatusActive,
	ClientStatusInactive,
}

// String implements fmt.Stringer.
func (c ClientStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ClientStatus.
func (c ClientStatus) IsValid() bool {
	for _, candidate := range validClientStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseClientStatus converts raw input into a ClientStatus.
func ParseClientStatus(value string) (ClientStatus, error) {
	for _, candidate := range validClientStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client status %q", value)
}
