package entitlements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a memberships repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) Create(ctx context.Context, membership *models.Membership) (*models.Membership, error) {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *repository) Update(ctx context.Context, membershipID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("id = ?", membershipID).
		Updates(updates).Error
}

func (r *repository) RecordActivation(ctx context.Context, activation *models.EntitlementActivation) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(activation)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).
		Where("id = ?", planID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ExpireLapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	// Limit keeps each sweep bounded; the job runs again on the next tick.
	res := r.db.WithContext(ctx).Exec(`
		UPDATE memberships
		SET status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id IN (
			SELECT id FROM memberships
			WHERE status = ? AND renews_at <= ?
			ORDER BY renews_at ASC
			LIMIT ?
		)
	`, enums.MembershipStatusExpired, enums.MembershipStatusActive, now, limit)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
