package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/internal/audit"
	"github.com/angelmondragon/dealroom-backend/internal/promos"
	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
	"github.com/angelmondragon/dealroom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type promoRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, code string, cartTotalCents int64, orderID uuid.UUID) (*promos.Quote, error)
}

// Activator turns a durably completed order into an entitlement. It runs in
// its own transaction; a failure here never unwinds the payment transition.
type Activator interface {
	ActivateForOrder(ctx context.Context, order *models.Order) (*models.Membership, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	ListAdmin(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error)
	ReconcilePendingActivations(ctx context.Context, batch int) (int, error)
}

type service struct {
	repo      Repository
	trail     audit.Repository
	promo     promoRedeemer
	activator Activator
	tx        txRunner
	logg      *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, trail audit.Repository, promo promoRedeemer, activator Activator, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if promo == nil {
		return nil, fmt.Errorf("promo redeemer required")
	}
	if activator == nil {
		return nil, fmt.Errorf("entitlement activator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		trail:     trail,
		promo:     promo,
		activator: activator,
		tx:        tx,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	planIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.PlanID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item plan id required")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		planIDs = append(planIDs, item.PlanID)
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		plans, err := repo.FindActivePlans(ctx, planIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plans")
		}
		plansByID := make(map[uuid.UUID]models.Plan, len(plans))
		for _, plan := range plans {
			plansByID[plan.ID] = plan
		}

		var currency enums.Currency
		var subtotal int64
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			plan, ok := plansByID[item.PlanID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown or inactive item").
					WithDetails(map[string]string{"reason": "InvalidItem", "plan_id": item.PlanID.String()})
			}
			if currency == "" {
				currency = plan.Currency
			} else if plan.Currency != currency {
				return pkgerrors.New(pkgerrors.CodeValidation, "items use different currencies").
					WithDetails(map[string]string{"reason": "CurrencyMismatch"})
			}
			lineTotal := plan.UnitPriceCents * int64(item.Qty)
			subtotal += lineTotal
			items = append(items, models.OrderItem{
				PlanID:         plan.ID,
				Name:           plan.Name,
				UnitPriceCents: plan.UnitPriceCents,
				Qty:            item.Qty,
				TotalCents:     lineTotal,
			})
		}

		order = &models.Order{
			ID:            uuid.New(),
			BuyerID:       input.BuyerID,
			Currency:      currency,
			Status:        enums.OrderStatusPending,
			SubtotalCents: subtotal,
			TotalCents:    subtotal,
			Items:         items,
		}

		if input.PromoCode != nil && *input.PromoCode != "" {
			quote, err := s.promo.Redeem(ctx, tx, *input.PromoCode, subtotal, order.ID)
			if err != nil {
				return err
			}
			order.DiscountCents = quote.DiscountCents
			order.TotalCents = quote.FinalTotalCents
			order.PromoCode = &quote.Code
		}

		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		entry := &models.StatusTransition{
			SubjectKind: enums.TransitionSubjectOrder,
			SubjectID:   order.ID,
			ToStatus:    string(enums.OrderStatusPending),
			ActorID:     &input.BuyerID,
		}
		if err := s.trail.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !input.ActorRole.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment verification requires an administrative actor")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		// Replays against an already completed order are successful no-ops.
		if current.Status == enums.OrderStatusCompleted {
			order = current
			return nil
		}
		if current.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
				WithDetails(map[string]string{"reason": "InvalidTransition", "status": string(current.Status)})
		}

		moved, err := repo.TransitionStatus(ctx, current.ID, enums.OrderStatusPending, enums.OrderStatusCompleted)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order status")
		}
		if !moved {
			// A concurrent writer won the check-and-set; observe its outcome.
			reloaded, err := repo.FindByID(ctx, current.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if reloaded.Status == enums.OrderStatusCompleted {
				order = reloaded
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
				WithDetails(map[string]string{"reason": "InvalidTransition", "status": string(reloaded.Status)})
		}

		if input.ExternalReference != nil {
			if err := repo.Update(ctx, current.ID, map[string]any{"external_reference": *input.ExternalReference}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record external reference")
			}
			current.ExternalReference = input.ExternalReference
		}

		from := string(enums.OrderStatusPending)
		entry := &models.StatusTransition{
			SubjectKind:       enums.TransitionSubjectOrder,
			SubjectID:         current.ID,
			FromStatus:        &from,
			ToStatus:          string(enums.OrderStatusCompleted),
			ActorID:           &input.ActorID,
			Notes:             input.Notes,
			ExternalReference: input.ExternalReference,
		}
		if err := s.trail.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		current.Status = enums.OrderStatusCompleted
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Activation runs after the payment transition is durable. A failure here
	// marks the order for out-of-band reconciliation instead of rolling back.
	if !order.PendingActivation {
		if _, err := s.activator.ActivateForOrder(ctx, order); err != nil {
			ctx = s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Error(ctx, "entitlement activation deferred", err)
			if markErr := s.repo.SetPendingActivation(ctx, order.ID, true); markErr != nil {
				s.logg.Error(ctx, "failed to flag order for activation retry", markErr)
			} else {
				order.PendingActivation = true
			}
		}
	}

	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.NewStatus == enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion goes through payment verification")
	}
	if input.NewStatus == enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "orders cannot return to pending").
			WithDetails(map[string]string{"reason": "InvalidTransition"})
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		// Buyers may cancel their own pending order; everything else is admin.
		if !input.ActorRole.IsAdmin() {
			if !(input.NewStatus == enums.OrderStatusCancelled && current.BuyerID == input.ActorID) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "status update requires an administrative actor")
			}
		}

		if current.Status == input.NewStatus {
			order = current
			return nil
		}
		if current.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
				WithDetails(map[string]string{"reason": "InvalidTransition", "status": string(current.Status)})
		}

		moved, err := repo.TransitionStatus(ctx, current.ID, enums.OrderStatusPending, input.NewStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order status")
		}
		if !moved {
			reloaded, err := repo.FindByID(ctx, current.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if reloaded.Status == input.NewStatus {
				order = reloaded
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state").
				WithDetails(map[string]string{"reason": "InvalidTransition", "status": string(reloaded.Status)})
		}

		from := string(enums.OrderStatusPending)
		entry := &models.StatusTransition{
			SubjectKind: enums.TransitionSubjectOrder,
			SubjectID:   current.ID,
			FromStatus:  &from,
			ToStatus:    string(input.NewStatus),
			ActorID:     &input.ActorID,
			Notes:       input.Notes,
		}
		if err := s.trail.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		current.Status = input.NewStatus
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	history, err := s.trail.ListBySubject(ctx, enums.TransitionSubjectOrder, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return &OrderDetail{Order: *order, History: history}, nil
}

func (s *service) ListAdmin(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error) {
	list, err := s.repo.ListAdmin(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// ReconcilePendingActivations retries entitlement activation for completed
// orders whose first attempt failed. Returns how many were activated.
func (s *service) ReconcilePendingActivations(ctx context.Context, batch int) (int, error) {
	pending, err := s.repo.FindPendingActivation(ctx, batch)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending activations")
	}

	var errs error
	activated := 0
	for i := range pending {
		order := pending[i]
		if _, err := s.activator.ActivateForOrder(ctx, &order); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		if err := s.repo.SetPendingActivation(ctx, order.ID, false); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: clear flag: %w", order.ID, err))
			continue
		}
		activated++
	}
	return activated, errs
}
