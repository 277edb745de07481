package enums

import "fmt"

// ListingStatus is owned by the moderation workflow; the gate only reads it.
type ListingStatus string

const (
	ListingStatusSubmitted ListingStatus = "submitted"
	ListingStatusApproved  ListingStatus = "approved"
	ListingStatusRejected  ListingStatus = "rejected"
)

var validListingStatuses = []ListingStatus{
	ListingStatusSubmitted,
	ListingStatusApproved,
	ListingStatusRejected,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
