package enums

import "fmt"

// PromoKind distinguishes how a promo code discounts a total.
type PromoKind string

const (
	PromoKindPercentage  PromoKind = "percentage"
	PromoKindFixedAmount PromoKind = "fixed_amount"
)

var validPromoKinds = []PromoKind{
	PromoKindPercentage,
	PromoKindFixedAmount,
}

// String implements fmt.Stringer.
func (k PromoKind) String() string {
	return string(k)
}

// IsValid reports whether the value is known.
func (k PromoKind) IsValid() bool {
	for _, candidate := range validPromoKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePromoKind converts raw input into a PromoKind.
func ParsePromoKind(value string) (PromoKind, error) {
	for _, candidate := range validPromoKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promo kind %q", value)
}
