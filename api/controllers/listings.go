package controllers

import (
	"net/http"

	"github.com/angelmondragon/dealroom-backend/api/responses"
	internalgate "github.com/angelmondragon/dealroom-backend/internal/gate"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

// GetListing returns a listing trimmed to what the viewer is entitled to
// see. Anonymous requests are allowed; they get the public envelope only.
func GetListing(svc internalgate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gate service unavailable"))
			return
		}

		listingID, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ResolveListing(r.Context(), optionalViewerFromContext(r), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
