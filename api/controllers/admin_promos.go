package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/dealroom-backend/api/responses"
	"github.com/angelmondragon/dealroom-backend/api/validators"
	internalpromos "github.com/angelmondragon/dealroom-backend/internal/promos"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type createPromoRequest struct {
	Code              string     `json:"code" validate:"required,min=1,max=64"`
	Kind              string     `json:"kind" validate:"required,oneof=percentage fixed_amount"`
	Value             int64      `json:"value" validate:"required,min=1"`
	MinCartTotalCents *int64     `json:"min_cart_total_cents,omitempty" validate:"omitempty,min=0"`
	MaxRedemptions    *int       `json:"max_redemptions,omitempty" validate:"omitempty,min=1"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	Active            bool       `json:"active"`
}

// AdminCreatePromo registers a new promo code.
func AdminCreatePromo(svc internalpromos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promos service unavailable"))
			return
		}

		var payload createPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Create(r.Context(), internalpromos.CreatePromoInput{
			Code:              payload.Code,
			Kind:              enums.PromoKind(payload.Kind),
			Value:             payload.Value,
			MinCartTotalCents: payload.MinCartTotalCents,
			MaxRedemptions:    payload.MaxRedemptions,
			ExpiresAt:         payload.ExpiresAt,
			Active:            payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, promo)
	}
}

// AdminListPromos returns every promo code, active or not.
func AdminListPromos(svc internalpromos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promos service unavailable"))
			return
		}

		promos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promos)
	}
}

type updatePromoRequest struct {
	Active            *bool      `json:"active,omitempty"`
	MinCartTotalCents *int64     `json:"min_cart_total_cents,omitempty" validate:"omitempty,min=0"`
	MaxRedemptions    *int       `json:"max_redemptions,omitempty" validate:"omitempty,min=1"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

// AdminUpdatePromo changes the mutable fields of an existing code. The code
// string and kind are immutable once created.
func AdminUpdatePromo(svc internalpromos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promos service unavailable"))
			return
		}

		promoID, err := pathUUID(r, "promoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Update(r.Context(), promoID, internalpromos.UpdatePromoInput{
			Active:            payload.Active,
			MinCartTotalCents: payload.MinCartTotalCents,
			MaxRedemptions:    payload.MaxRedemptions,
			ExpiresAt:         payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promo)
	}
}
