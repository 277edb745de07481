package gate

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// PublicFields are always disclosed regardless of viewer state.
type PublicFields struct {
	Title    string `json:"title"`
	Industry string `json:"industry"`
	Summary  string `json:"summary"`
}

// ConfidentialFields are disclosed only when access is granted.
type ConfidentialFields struct {
	BusinessURL    string   `json:"business_url"`
	BrandName      string   `json:"brand_name"`
	OrganicTraffic int64    `json:"organic_traffic"`
	PaidTraffic    int64    `json:"paid_traffic"`
	Marketplaces   []string `json:"marketplaces"`
	Documents      []string `json:"documents"`
}

// ListingView is the gate's answer for one viewer/listing pair. Confidential
// is nil unless Reason is granted, and Reason tells blocked viewers which
// step is next.
type ListingView struct {
	ListingID    uuid.UUID           `json:"listing_id"`
	Public       PublicFields        `json:"public"`
	Confidential *ConfidentialFields `json:"confidential,omitempty"`
	Reason       enums.AccessReason  `json:"reason"`
}
