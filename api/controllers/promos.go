package controllers

import (
	"net/http"

	"github.com/angelmondragon/dealroom-backend/api/responses"
	"github.com/angelmondragon/dealroom-backend/api/validators"
	internalpromos "github.com/angelmondragon/dealroom-backend/internal/promos"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type applyPromoRequest struct {
	Code           string `json:"code" validate:"required,min=1,max=64"`
	CartTotalCents int64  `json:"cart_total_cents" validate:"required,min=1"`
}

// ApplyPromo quotes the discount a code would produce against a cart total.
// Nothing is consumed; redemption happens when the order is created.
func ApplyPromo(svc internalpromos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promos service unavailable"))
			return
		}

		var payload applyPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Apply(r.Context(), validators.SanitizeString(payload.Code, 64), payload.CartTotalCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
