package enums

import "fmt"

// PlanKind distinguishes the purchasable item categories.
type PlanKind string

const (
	PlanKindMembership  PlanKind = "membership"
	PlanKindAgentRental PlanKind = "agent_rental"
	PlanKindListingPlan PlanKind = "listing_plan"
)

var validPlanKinds = []PlanKind{
	PlanKindMembership,
	PlanKindAgentRental,
	PlanKindListingPlan,
}

// String implements fmt.Stringer.
func (k PlanKind) String() string {
	return string(k)
}

// IsValid reports whether the value is known.
func (k PlanKind) IsValid() bool {
	for _, candidate := range validPlanKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePlanKind converts raw input into a PlanKind.
func ParsePlanKind(value string) (PlanKind, error) {
	for _, candidate := range validPlanKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan kind %q", value)
}
