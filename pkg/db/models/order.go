package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// Order records a purchase intent with a total fixed at creation time. The
// total already reflects any promo discount; it is never recomputed.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID           uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	Currency          enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents     int64             `gorm:"column:subtotal_cents;not null"`
	DiscountCents     int64             `gorm:"column:discount_cents;not null;default:0"`
	TotalCents        int64             `gorm:"column:total_cents;not null"`
	PromoCode         *string           `gorm:"column:promo_code"`
	ExternalReference *string           `gorm:"column:external_reference"`
	// PendingActivation marks a completed order whose entitlement activation
	// failed and is awaiting out-of-band reconciliation.
	PendingActivation bool        `gorm:"column:pending_activation;not null;default:false"`
	Items             []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one purchasable line inside an order.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	PlanID         uuid.UUID `gorm:"column:plan_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null;default:1"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
