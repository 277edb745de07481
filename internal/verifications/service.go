package verifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/internal/audit"
	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages buyer verification status. Only administrators may change
// it; everyone else only reads.
type Service interface {
	SetStatus(ctx context.Context, input SetStatusInput) (*models.BuyerVerification, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*models.BuyerVerification, error)
}

// SetStatusInput carries an administrative status change.
type SetStatusInput struct {
	UserID    uuid.UUID
	Status    enums.VerificationStatus
	ActorID   uuid.UUID
	ActorRole enums.MemberRole
	Notes     string
}

type service struct {
	repo  Repository
	trail audit.Repository
	tx    txRunner
	logg  *logger.Logger
}

// NewService builds a verifications service with the required dependencies.
func NewService(repo Repository, trail audit.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verifications repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, trail: trail, tx: tx, logg: logg}, nil
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*models.BuyerVerification, error) {
	if !input.ActorRole.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "verification changes require the admin capability")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid verification status").
			WithDetails(map[string]any{"status": input.Status.String()})
	}

	var verification *models.BuyerVerification
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var fromStatus *string
		existing, err := repo.FindByUser(ctx, input.UserID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification")
		}
		if existing != nil {
			if existing.Status == input.Status {
				verification = existing
				return nil
			}
			prev := existing.Status.String()
			fromStatus = &prev
		}

		actorID := input.ActorID
		record := &models.BuyerVerification{
			UserID:    input.UserID,
			Status:    input.Status,
			UpdatedBy: &actorID,
		}
		if err := repo.Upsert(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save verification")
		}

		entry := &models.StatusTransition{
			SubjectKind: enums.TransitionSubjectVerification,
			SubjectID:   input.UserID,
			FromStatus:  fromStatus,
			ToStatus:    input.Status.String(),
			ActorID:     &actorID,
		}
		if input.Notes != "" {
			notes := input.Notes
			entry.Notes = &notes
		}
		if err := s.trail.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verification transition")
		}

		verification = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, input.UserID.String())
	ctx = s.logg.WithField(ctx, "status", verification.Status.String())
	s.logg.Info(ctx, "verification status updated")
	return verification, nil
}

// GetForUser returns the verification record, synthesizing an unverified one
// when no row exists yet.
func (s *service) GetForUser(ctx context.Context, userID uuid.UUID) (*models.BuyerVerification, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	verification, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.BuyerVerification{
				UserID: userID,
				Status: enums.VerificationStatusUnverified,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification")
	}
	return verification, nil
}
