package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// BuyerVerification is the identity check record, one per user. Absence of a
// row reads the same as unverified.
type BuyerVerification struct {
	UserID    uuid.UUID               `gorm:"column:user_id;type:uuid;primaryKey"`
	Status    enums.VerificationStatus `gorm:"column:status;type:text;not null;default:'unverified'"`
	UpdatedBy *uuid.UUID              `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
