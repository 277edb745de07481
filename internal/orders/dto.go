package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// OrderItemInput references one purchasable plan and a quantity.
type OrderItemInput struct {
	PlanID uuid.UUID
	Qty    int
}

// CreateOrderInput captures everything needed to build a pending order.
type CreateOrderInput struct {
	BuyerID   uuid.UUID
	Items     []OrderItemInput
	PromoCode *string
}

// VerifyPaymentInput records an externally asserted payment outcome.
type VerifyPaymentInput struct {
	OrderID           uuid.UUID
	ActorID           uuid.UUID
	ActorRole         enums.MemberRole
	ExternalReference *string
	Notes             *string
}

// UpdateStatusInput drives the generic administrative transition.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.MemberRole
	NewStatus enums.OrderStatus
	Notes     *string
}

// AdminOrderFilters describe the inputs supported by the admin orders list.
type AdminOrderFilters struct {
	Status            *enums.OrderStatus
	BuyerID           *uuid.UUID
	DateFrom          *time.Time
	DateTo            *time.Time
	PendingActivation *bool
}

// AdminOrderSummary exposes the aggregated fields returned in the admin list.
type AdminOrderSummary struct {
	ID                uuid.UUID         `json:"id"`
	BuyerID           uuid.UUID         `json:"buyer_id"`
	Status            enums.OrderStatus `json:"status"`
	Currency          enums.Currency    `json:"currency"`
	TotalCents        int64             `json:"total_cents"`
	DiscountCents     int64             `json:"discount_cents"`
	PromoCode         *string           `json:"promo_code,omitempty"`
	PendingActivation bool              `json:"pending_activation"`
	CreatedAt         time.Time         `json:"created_at"`
}

// AdminOrderList wraps the paginated orders plus the next page cursor.
type AdminOrderList struct {
	Orders     []AdminOrderSummary `json:"orders"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// OrderDetail bundles an order with its full transition history.
type OrderDetail struct {
	Order   models.Order              `json:"order"`
	History []models.StatusTransition `json:"history"`
}
