package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// Repository persists the append-only status transition log. Rows are only
// ever inserted; there is no update or delete surface on purpose.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, transition *models.StatusTransition) error
	ListBySubject(ctx context.Context, kind enums.TransitionSubject, subjectID uuid.UUID) ([]models.StatusTransition, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, transition *models.StatusTransition) error {
	return r.db.WithContext(ctx).Create(transition).Error
}

func (r *repository) ListBySubject(ctx context.Context, kind enums.TransitionSubject, subjectID uuid.UUID) ([]models.StatusTransition, error) {
	var transitions []models.StatusTransition
	err := r.db.WithContext(ctx).
		Where("subject_kind = ? AND subject_id = ?", kind, subjectID).
		Order("created_at ASC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}
