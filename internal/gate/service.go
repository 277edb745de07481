package gate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/internal/listings"
	"github.com/angelmondragon/dealroom-backend/internal/ndas"
	"github.com/angelmondragon/dealroom-backend/internal/verifications"
	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/visibility"
)

// Service decides how much of a listing a viewer may see.
type Service interface {
	// ResolveListing returns the listing trimmed to what the viewer may see.
	// ViewerID is uuid.Nil for anonymous viewers.
	ResolveListing(ctx context.Context, viewerID, listingID uuid.UUID) (*ListingView, error)
}

type service struct {
	listings      listings.Repository
	ndas          ndas.Repository
	verifications verifications.Repository
}

// NewService builds a gate service with the required dependencies.
func NewService(listingRepo listings.Repository, ndaRepo ndas.Repository, verificationRepo verifications.Repository) (Service, error) {
	if listingRepo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if ndaRepo == nil {
		return nil, fmt.Errorf("nda repository required")
	}
	if verificationRepo == nil {
		return nil, fmt.Errorf("verifications repository required")
	}
	return &service{listings: listingRepo, ndas: ndaRepo, verifications: verificationRepo}, nil
}

func (s *service) ResolveListing(ctx context.Context, viewerID, listingID uuid.UUID) (*ListingView, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	input := visibility.ListingAccessInput{
		Listing:  listing,
		ViewerID: viewerID,
	}

	// The owner bypass and anonymous guards resolve without touching the NDA
	// or verification tables, so only look those up for other signed-in users.
	if viewerID != uuid.Nil && viewerID != listing.SellerID {
		if _, err := s.ndas.FindByBuyerAndListing(ctx, viewerID, listingID); err == nil {
			input.NdaSigned = true
		} else if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nda agreement")
		}

		input.VerificationStatus = enums.VerificationStatusUnverified
		if verification, err := s.verifications.FindByUser(ctx, viewerID); err == nil {
			input.VerificationStatus = verification.Status
		} else if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification")
		}
	}

	reason, err := visibility.ResolveListingAccess(input)
	if err != nil {
		return nil, err
	}

	view := &ListingView{
		ListingID: listing.ID,
		Public: PublicFields{
			Title:    listing.Title,
			Industry: listing.Industry,
			Summary:  listing.Summary,
		},
		Reason: reason,
	}
	if reason == enums.AccessReasonGranted {
		view.Confidential = confidentialFrom(listing)
	}
	return view, nil
}

func confidentialFrom(listing *models.Listing) *ConfidentialFields {
	return &ConfidentialFields{
		BusinessURL:    listing.BusinessURL,
		BrandName:      listing.BrandName,
		OrganicTraffic: listing.OrganicTraffic,
		PaidTraffic:    listing.PaidTraffic,
		Marketplaces:   listing.Marketplaces,
		Documents:      listing.Documents,
	}
}
