package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// PromoCode is a discount rule. Codes are stored uppercase and looked up
// case-insensitively. RedemptionCount only moves through the conditional
// increment in the promos repository.
type PromoCode struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code              string          `gorm:"column:code;not null;unique"`
	Kind              enums.PromoKind `gorm:"column:kind;type:text;not null"`
	Value             int64           `gorm:"column:value;not null"`
	MinCartTotalCents *int64          `gorm:"column:min_cart_total_cents"`
	MaxRedemptions    *int            `gorm:"column:max_redemptions"`
	RedemptionCount   int             `gorm:"column:redemption_count;not null;default:0"`
	ExpiresAt         *time.Time      `gorm:"column:expires_at"`
	Active            bool            `gorm:"column:active;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// PromoRedemption ties a redemption to exactly one order so retried checkout
// requests cannot double-count against MaxRedemptions.
type PromoRedemption struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PromoCodeID uuid.UUID `gorm:"column:promo_code_id;type:uuid;not null;index"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;unique"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
