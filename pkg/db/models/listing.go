package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// Listing carries the fields the confidential-data gate cares about. The full
// listing lifecycle (wizard, moderation) lives outside this service.
type Listing struct {
	ID       uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	Status   enums.ListingStatus `gorm:"column:status;type:text;not null;default:'submitted'"`

	// Public fields, always disclosed.
	Title    string `gorm:"column:title;not null"`
	Industry string `gorm:"column:industry"`
	Summary  string `gorm:"column:summary"`

	// Confidential fields, disclosed only when the gate grants access.
	BusinessURL    string   `gorm:"column:business_url"`
	BrandName      string   `gorm:"column:brand_name"`
	OrganicTraffic int64    `gorm:"column:organic_traffic;not null;default:0"`
	PaidTraffic    int64    `gorm:"column:paid_traffic;not null;default:0"`
	Marketplaces   []string `gorm:"column:marketplaces;type:jsonb;serializer:json"`
	Documents      []string `gorm:"column:documents;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
