package entitlements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
)

// Repository defines persistence operations for memberships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	Create(ctx context.Context, membership *models.Membership) (*models.Membership, error)
	Update(ctx context.Context, membershipID uuid.UUID, updates map[string]any) error
	// RecordActivation inserts the per-order activation marker. It returns
	// false when the order was already activated, leaving the existing row.
	RecordActivation(ctx context.Context, activation *models.EntitlementActivation) (bool, error)
	FindPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error)
	// ExpireLapsed flips active memberships whose renewal date has passed to
	// expired, returning how many rows moved.
	ExpireLapsed(ctx context.Context, now time.Time, limit int) (int64, error)
}
