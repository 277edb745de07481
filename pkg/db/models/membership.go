package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// Membership is the buyer entitlement activated by a verified payment. One
// row per user; renewals move RenewsAt forward instead of inserting.
type Membership struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;unique"`
	PlanID      uuid.UUID              `gorm:"column:plan_id;type:uuid;not null"`
	Status      enums.MembershipStatus `gorm:"column:status;type:text;not null;default:'active'"`
	StartedAt   time.Time              `gorm:"column:started_at;not null"`
	RenewsAt    time.Time              `gorm:"column:renews_at;not null"`
	CanceledAt  *time.Time             `gorm:"column:canceled_at"`
	// LastOrderID points at the most recent activating order. Idempotency is
	// enforced per order through EntitlementActivation, not this column.
	LastOrderID *uuid.UUID `gorm:"column:last_order_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// EntitlementActivation ties an activation to exactly one order so a replayed
// payment verification cannot renew the membership a second time.
type EntitlementActivation struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null;unique"`
	MembershipID uuid.UUID `gorm:"column:membership_id;type:uuid;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// IsActive reports whether the membership grants access at the given instant.
func (m Membership) IsActive(now time.Time) bool {
	return m.Status == enums.MembershipStatusActive && now.Before(m.RenewsAt)
}
