package models

import (
	"time"

	"github.com/google/uuid"
)

// NdaAgreement is one buyer's signature against one listing. The unique pair
// constraint makes re-signs resolve to the existing row.
type NdaAgreement struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:idx_ndas_buyer_listing"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_ndas_buyer_listing"`
	AgreedAt  time.Time `gorm:"column:agreed_at;not null"`
	IPAddress string    `gorm:"column:ip_address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
