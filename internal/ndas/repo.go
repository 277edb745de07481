package ndas

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
)

// Repository persists NDA agreements. Rows are immutable once written.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Insert writes the agreement unless the (buyer, listing) pair already
	// holds one. The boolean reports whether a new row was created.
	Insert(ctx context.Context, agreement *models.NdaAgreement) (bool, error)
	FindByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*models.NdaAgreement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an NDA repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, agreement *models.NdaAgreement) (bool, error) {
	// ON CONFLICT DO NOTHING makes double-click retries race-free; the unique
	// pair constraint is the single-writer primitive.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "buyer_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).
		Create(agreement)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*models.NdaAgreement, error) {
	var agreement models.NdaAgreement
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND listing_id = ?", buyerID, listingID).
		First(&agreement).Error
	if err != nil {
		return nil, err
	}
	return &agreement, nil
}
