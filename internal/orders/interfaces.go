package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	"github.com/angelmondragon/dealroom-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and plan lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// TransitionStatus moves the order between the given statuses with a
	// single conditional update. The boolean reports whether the row moved.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	SetPendingActivation(ctx context.Context, orderID uuid.UUID, pending bool) error
	FindPendingActivation(ctx context.Context, limit int) ([]models.Order, error)
	FindActivePlans(ctx context.Context, planIDs []uuid.UUID) ([]models.Plan, error)
	ListAdmin(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error)
}
