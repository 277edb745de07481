package verifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
)

// Repository persists buyer verification records keyed by user id.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.BuyerVerification, error)
	// Upsert writes the record, replacing the status for an existing user.
	Upsert(ctx context.Context, verification *models.BuyerVerification) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a verifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.BuyerVerification, error) {
	var verification models.BuyerVerification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&verification).Error
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *repository) Upsert(ctx context.Context, verification *models.BuyerVerification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_by", "updated_at"}),
		}).
		Create(verification).Error
}
