package entitlements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages membership entitlements derived from completed orders.
type Service interface {
	ActivateForOrder(ctx context.Context, order *models.Order) (*models.Membership, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	ExpireLapsed(ctx context.Context, batch int) (int64, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds an entitlements service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("entitlements repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg, now: time.Now}, nil
}

// ActivateForOrder creates or renews the buyer's membership for the plan on
// the order. Replays with the same order id return the membership unchanged.
func (s *service) ActivateForOrder(ctx context.Context, order *models.Order) (*models.Membership, error) {
	if order == nil || order.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "activation requires a completed order")
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items to activate")
	}

	var membership *models.Membership
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := s.now().UTC()
		orderID := order.ID

		existing, err := repo.FindByUser(ctx, order.BuyerID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}

		// The activation marker is keyed on the order id, so any replay of an
		// already-activated order returns the membership untouched no matter
		// how many later orders have renewed it since.
		if existing != nil {
			recorded, err := repo.RecordActivation(ctx, &models.EntitlementActivation{
				OrderID:      orderID,
				MembershipID: existing.ID,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activation")
			}
			if !recorded {
				membership = existing
				return nil
			}
		}

		plan, err := planForOrder(ctx, repo, order)
		if err != nil {
			return err
		}

		if existing == nil {
			created, err := repo.Create(ctx, &models.Membership{
				UserID:      order.BuyerID,
				PlanID:      plan.ID,
				Status:      enums.MembershipStatusActive,
				StartedAt:   now,
				RenewsAt:    plan.BillingInterval.AddTo(now),
				LastOrderID: &orderID,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
			}
			if _, err := repo.RecordActivation(ctx, &models.EntitlementActivation{
				OrderID:      orderID,
				MembershipID: created.ID,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activation")
			}
			membership = created
			return nil
		}

		updates := map[string]any{
			"status":        enums.MembershipStatusActive,
			"last_order_id": orderID,
			"canceled_at":   nil,
		}
		if existing.PlanID == plan.ID && existing.IsActive(now) {
			// Renewal of the current plan extends from the existing renewal
			// date so buyers never lose paid-for time.
			existing.RenewsAt = plan.BillingInterval.AddTo(existing.RenewsAt)
			updates["renews_at"] = existing.RenewsAt
		} else {
			existing.PlanID = plan.ID
			existing.StartedAt = now
			existing.RenewsAt = plan.BillingInterval.AddTo(now)
			updates["plan_id"] = plan.ID
			updates["started_at"] = now
			updates["renews_at"] = existing.RenewsAt
		}
		if err := repo.Update(ctx, existing.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update membership")
		}

		existing.Status = enums.MembershipStatusActive
		existing.LastOrderID = &orderID
		existing.CanceledAt = nil
		membership = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// planForOrder picks the plan the order entitles. Mixed orders activate the
// membership plan regardless of where it sits in the item list; an order with
// no membership item falls back to its first plan.
func planForOrder(ctx context.Context, repo Repository, order *models.Order) (*models.Plan, error) {
	var fallback *models.Plan
	for _, item := range order.Items {
		plan, err := repo.FindPlan(ctx, item.PlanID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "order references an unknown plan")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
		}
		if plan.Kind == enums.PlanKindMembership {
			return plan, nil
		}
		if fallback == nil {
			fallback = plan
		}
	}
	return fallback, nil
}

func (s *service) GetForUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	membership, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return membership, nil
}

func (s *service) Cancel(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var membership *models.Membership
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByUser(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}

		if existing.Status == enums.MembershipStatusCancelled {
			membership = existing
			return nil
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":      enums.MembershipStatusCancelled,
			"canceled_at": now,
		}
		if err := repo.Update(ctx, existing.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel membership")
		}

		existing.Status = enums.MembershipStatusCancelled
		existing.CanceledAt = &now
		membership = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *service) ExpireLapsed(ctx context.Context, batch int) (int64, error) {
	if batch <= 0 {
		batch = 100
	}
	moved, err := s.repo.ExpireLapsed(ctx, s.now().UTC(), batch)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire memberships")
	}
	return moved, nil
}
