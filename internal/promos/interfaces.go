package promos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
)

// Repository defines persistence operations for promo codes and redemptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	FindByID(ctx context.Context, promoID uuid.UUID) (*models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	Update(ctx context.Context, promoID uuid.UUID, updates map[string]any) error
	List(ctx context.Context) ([]models.PromoCode, error)
	// IncrementRedemption bumps redemption_count only while capacity remains.
	// The boolean reports whether the increment was applied.
	IncrementRedemption(ctx context.Context, promoID uuid.UUID) (bool, error)
	CreateRedemption(ctx context.Context, redemption *models.PromoRedemption) error
	FindRedemptionByOrder(ctx context.Context, orderID uuid.UUID) (*models.PromoRedemption, error)
}
