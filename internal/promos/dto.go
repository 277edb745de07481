package promos

import (
	"time"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// Quote is the outcome of applying a promo code to a cart total. All amounts
// are integer minor units.
type Quote struct {
	Code            string `json:"code"`
	DiscountCents   int64  `json:"discount_cents"`
	FinalTotalCents int64  `json:"final_total_cents"`
}

// Rejection reasons surfaced in error details so callers can propagate the
// exact guard that failed.
const (
	ReasonInactive     = "Inactive"
	ReasonExpired      = "Expired"
	ReasonExhausted    = "Exhausted"
	ReasonBelowMinimum = "BelowMinimum"
)

// CreatePromoInput captures the admin inputs for a new code.
type CreatePromoInput struct {
	Code              string
	Kind              enums.PromoKind
	Value             int64
	MinCartTotalCents *int64
	MaxRedemptions    *int
	ExpiresAt         *time.Time
	Active            bool
}

// UpdatePromoInput carries the mutable fields of an existing code.
type UpdatePromoInput struct {
	Active            *bool
	MinCartTotalCents *int64
	MaxRedemptions    *int
	ExpiresAt         *time.Time
}
