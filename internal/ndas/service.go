package ndas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/internal/listings"
	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

// Status reports whether a buyer has signed the NDA for a listing.
type Status struct {
	Signed   bool       `json:"signed"`
	AgreedAt *time.Time `json:"agreed_at,omitempty"`
}

// Service manages NDA signatures for listings.
type Service interface {
	// Sign records the buyer's agreement. Signing again for the same listing
	// returns the original record unchanged.
	Sign(ctx context.Context, buyerID, listingID uuid.UUID, ipAddress string) (*models.NdaAgreement, error)
	GetStatus(ctx context.Context, buyerID, listingID uuid.UUID) (*Status, error)
}

type service struct {
	repo     Repository
	listings listings.Repository
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an NDA service with the required dependencies.
func NewService(repo Repository, listingRepo listings.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("nda repository required")
	}
	if listingRepo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, listings: listingRepo, logg: logg, now: time.Now}, nil
}

func (s *service) Sign(ctx context.Context, buyerID, listingID uuid.UUID, ipAddress string) (*models.NdaAgreement, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	agreement := &models.NdaAgreement{
		BuyerID:   buyerID,
		ListingID: listingID,
		AgreedAt:  s.now().UTC(),
		IPAddress: ipAddress,
	}
	created, err := s.repo.Insert(ctx, agreement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record nda agreement")
	}
	if created {
		ctx = s.logg.WithListingID(ctx, listingID.String())
		ctx = s.logg.WithUserID(ctx, buyerID.String())
		s.logg.Info(ctx, "nda signed")
		return agreement, nil
	}

	existing, err := s.repo.FindByBuyerAndListing(ctx, buyerID, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nda agreement")
	}
	return existing, nil
}

func (s *service) GetStatus(ctx context.Context, buyerID, listingID uuid.UUID) (*Status, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	agreement, err := s.repo.FindByBuyerAndListing(ctx, buyerID, listingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &Status{Signed: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nda agreement")
	}
	agreedAt := agreement.AgreedAt
	return &Status{Signed: true, AgreedAt: &agreedAt}, nil
}
