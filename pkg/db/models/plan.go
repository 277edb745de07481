package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// Plan is a purchasable item: a membership tier, an AI-agent rental, or a
// listing plan. Prices are integer minor units; display conversion only.
type Plan struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string                `gorm:"column:code;not null;unique"`
	Name            string                `gorm:"column:name;not null"`
	Kind            enums.PlanKind        `gorm:"column:kind;type:text;not null"`
	Currency        enums.Currency        `gorm:"column:currency;type:text;not null;default:'USD'"`
	UnitPriceCents  int64                 `gorm:"column:unit_price_cents;not null"`
	BillingInterval enums.BillingInterval `gorm:"column:billing_interval;type:text;not null;default:'monthly'"`
	Active          bool                  `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayPrice renders the unit price in major units for API payloads.
func (p Plan) DisplayPrice() string {
	return decimal.NewFromInt(p.UnitPriceCents).Shift(-2).StringFixed(2)
}
