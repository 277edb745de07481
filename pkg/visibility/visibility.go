package visibility

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
)

// ListingAccessInput drives the ordered guard chain for confidential listing
// fields. ViewerID is uuid.Nil for anonymous viewers.
type ListingAccessInput struct {
	Listing            *models.Listing
	ViewerID           uuid.UUID
	NdaSigned          bool
	VerificationStatus enums.VerificationStatus
}

// ResolveListingAccess returns the reason code for the given viewer/listing
// pair. Guards short-circuit in order: owner bypass, authentication, NDA,
// verification. It is a pure function of its inputs.
func ResolveListingAccess(input ListingAccessInput) (enums.AccessReason, error) {
	if input.Listing == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if input.ViewerID != uuid.Nil && input.ViewerID == input.Listing.SellerID {
		return enums.AccessReasonGranted, nil
	}
	if input.ViewerID == uuid.Nil {
		return enums.AccessReasonLoginRequired, nil
	}
	if !input.NdaSigned {
		return enums.AccessReasonNdaRequired, nil
	}
	if input.VerificationStatus != enums.VerificationStatusVerified {
		return enums.AccessReasonVerificationRequired, nil
	}
	return enums.AccessReasonGranted, nil
}
