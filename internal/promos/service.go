package promos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

// Service exposes promo evaluation plus the admin management surface.
type Service interface {
	Apply(ctx context.Context, code string, cartTotalCents int64) (*Quote, error)
	Redeem(ctx context.Context, tx *gorm.DB, code string, cartTotalCents int64, orderID uuid.UUID) (*Quote, error)
	Create(ctx context.Context, input CreatePromoInput) (*models.PromoCode, error)
	Update(ctx context.Context, promoID uuid.UUID, input UpdatePromoInput) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a promo service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promos repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Apply evaluates a code against a cart total without any side effect.
func (s *service) Apply(ctx context.Context, code string, cartTotalCents int64) (*Quote, error) {
	promo, err := s.lookup(ctx, s.repo, code, cartTotalCents)
	if err != nil {
		return nil, err
	}
	return evaluate(promo, cartTotalCents, s.now())
}

// Redeem applies the code and records the redemption against orderID inside
// the caller's transaction. Replays with the same orderID return the same
// quote without a second increment.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string, cartTotalCents int64, orderID uuid.UUID) (*Quote, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	repo := s.repo.WithTx(tx)

	promo, err := s.lookup(ctx, repo, code, cartTotalCents)
	if err != nil {
		return nil, err
	}

	quote, err := evaluate(promo, cartTotalCents, s.now())
	if err != nil {
		// An exhausted code that this order already redeemed is still a valid
		// replay; fall through to the redemption check below.
		if existing, findErr := repo.FindRedemptionByOrder(ctx, orderID); findErr == nil && existing.PromoCodeID == promo.ID {
			return quoteIgnoringCapacity(promo, cartTotalCents, s.now())
		}
		return nil, err
	}

	if existing, findErr := repo.FindRedemptionByOrder(ctx, orderID); findErr == nil {
		if existing.PromoCodeID != promo.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already redeemed a different promo code")
		}
		return quote, nil
	} else if findErr != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load promo redemption")
	}

	applied, err := repo.IncrementRedemption(ctx, promo.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment promo redemption")
	}
	if !applied {
		return nil, rejection(pkgerrors.CodeConflict, "promo code is exhausted", ReasonExhausted)
	}

	redemption := &models.PromoRedemption{PromoCodeID: promo.ID, OrderID: orderID}
	if err := repo.CreateRedemption(ctx, redemption); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record promo redemption")
	}

	return quote, nil
}

func (s *service) Create(ctx context.Context, input CreatePromoInput) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid promo kind")
	}
	if input.Value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo value must be positive")
	}
	if input.Kind == enums.PromoKindPercentage && input.Value > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value cannot exceed 100")
	}
	if input.MaxRedemptions != nil && *input.MaxRedemptions <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max redemptions must be positive")
	}

	promo := &models.PromoCode{
		Code:              code,
		Kind:              input.Kind,
		Value:             input.Value,
		MinCartTotalCents: input.MinCartTotalCents,
		MaxRedemptions:    input.MaxRedemptions,
		ExpiresAt:         input.ExpiresAt,
		Active:            input.Active,
	}
	created, err := s.repo.Create(ctx, promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promo code")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, promoID uuid.UUID, input UpdatePromoInput) (*models.PromoCode, error) {
	if promoID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo id required")
	}

	updates := map[string]any{}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.MinCartTotalCents != nil {
		updates["min_cart_total_cents"] = *input.MinCartTotalCents
	}
	if input.MaxRedemptions != nil {
		if *input.MaxRedemptions <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max redemptions must be positive")
		}
		updates["max_redemptions"] = *input.MaxRedemptions
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updates provided")
	}

	if err := s.repo.Update(ctx, promoID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promo code")
	}

	promo, err := s.repo.FindByID(ctx, promoID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload promo code")
	}
	return promo, nil
}

func (s *service) List(ctx context.Context) ([]models.PromoCode, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promo codes")
	}
	return promos, nil
}

func (s *service) lookup(ctx context.Context, repo Repository, code string, cartTotalCents int64) (*models.PromoCode, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	if cartTotalCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	promo, err := repo.FindByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}
	return promo, nil
}

// evaluate runs the guard chain in its fixed order: active, expiry, capacity,
// minimum. The first failing guard names the rejection.
func evaluate(promo *models.PromoCode, cartTotalCents int64, now time.Time) (*Quote, error) {
	if !promo.Active {
		return nil, rejection(pkgerrors.CodeValidation, "promo code is inactive", ReasonInactive)
	}
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		return nil, rejection(pkgerrors.CodeValidation, "promo code is expired", ReasonExpired)
	}
	if promo.MaxRedemptions != nil && promo.RedemptionCount >= *promo.MaxRedemptions {
		return nil, rejection(pkgerrors.CodeConflict, "promo code is exhausted", ReasonExhausted)
	}
	if promo.MinCartTotalCents != nil && cartTotalCents < *promo.MinCartTotalCents {
		return nil, rejection(pkgerrors.CodeValidation, "cart total below promo minimum", ReasonBelowMinimum)
	}
	return buildQuote(promo, cartTotalCents), nil
}

// quoteIgnoringCapacity re-runs the guards except exhaustion, for replays that
// already hold a redemption row.
func quoteIgnoringCapacity(promo *models.PromoCode, cartTotalCents int64, now time.Time) (*Quote, error) {
	if !promo.Active {
		return nil, rejection(pkgerrors.CodeValidation, "promo code is inactive", ReasonInactive)
	}
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		return nil, rejection(pkgerrors.CodeValidation, "promo code is expired", ReasonExpired)
	}
	if promo.MinCartTotalCents != nil && cartTotalCents < *promo.MinCartTotalCents {
		return nil, rejection(pkgerrors.CodeValidation, "cart total below promo minimum", ReasonBelowMinimum)
	}
	return buildQuote(promo, cartTotalCents), nil
}

func buildQuote(promo *models.PromoCode, cartTotalCents int64) *Quote {
	var discount int64
	switch promo.Kind {
	case enums.PromoKindPercentage:
		// Deterministic round-down keeps client and server totals in agreement.
		discount = decimal.NewFromInt(cartTotalCents).
			Mul(decimal.NewFromInt(promo.Value)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case enums.PromoKindFixedAmount:
		discount = promo.Value
	}
	if discount > cartTotalCents {
		discount = cartTotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return &Quote{
		Code:            promo.Code,
		DiscountCents:   discount,
		FinalTotalCents: cartTotalCents - discount,
	}
}

func rejection(code pkgerrors.Code, message, reason string) error {
	return pkgerrors.New(code, message).WithDetails(map[string]string{"reason": reason})
}
