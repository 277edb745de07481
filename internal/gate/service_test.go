package gate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/internal/listings"
	"github.com/angelmondragon/dealroom-backend/internal/ndas"
	"github.com/angelmondragon/dealroom-backend/internal/verifications"
	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
)

type stubListingsRepo struct {
	listing *models.Listing
}

func (s *stubListingsRepo) WithTx(tx *gorm.DB) listings.Repository {
	return s
}

func (s *stubListingsRepo) FindByID(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	if s.listing == nil || s.listing.ID != listingID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.listing, nil
}

func (s *stubListingsRepo) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	s.listing = listing
	return listing, nil
}

type stubNdasRepo struct {
	agreement *models.NdaAgreement
}

func (s *stubNdasRepo) WithTx(tx *gorm.DB) ndas.Repository {
	return s
}

func (s *stubNdasRepo) Insert(ctx context.Context, agreement *models.NdaAgreement) (bool, error) {
	s.agreement = agreement
	return true, nil
}

func (s *stubNdasRepo) FindByBuyerAndListing(ctx context.Context, buyerID, listingID uuid.UUID) (*models.NdaAgreement, error) {
	if s.agreement == nil || s.agreement.BuyerID != buyerID || s.agreement.ListingID != listingID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.agreement, nil
}

type stubVerificationsRepo struct {
	verification *models.BuyerVerification
}

func (s *stubVerificationsRepo) WithTx(tx *gorm.DB) verifications.Repository {
	return s
}

func (s *stubVerificationsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.BuyerVerification, error) {
	if s.verification == nil || s.verification.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.verification, nil
}

func (s *stubVerificationsRepo) Upsert(ctx context.Context, verification *models.BuyerVerification) error {
	s.verification = verification
	return nil
}

func testListing(sellerID uuid.UUID) *models.Listing {
	return &models.Listing{
		ID:             uuid.New(),
		SellerID:       sellerID,
		Status:         enums.ListingStatusApproved,
		Title:          "SaaS business for sale",
		Industry:       "software",
		Summary:        "Profitable B2B tool",
		BusinessURL:    "https://example.com",
		BrandName:      "ExampleCo",
		OrganicTraffic: 12000,
		PaidTraffic:    3000,
		Marketplaces:   []string{"shopify"},
		Documents:      []string{"p&l-2025.pdf"},
	}
}

func newGate(t *testing.T, listing *models.Listing, nda *models.NdaAgreement, verification *models.BuyerVerification) Service {
	t.Helper()
	svc, err := NewService(
		&stubListingsRepo{listing: listing},
		&stubNdasRepo{agreement: nda},
		&stubVerificationsRepo{verification: verification},
	)
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func TestResolveListingAnonymousSeesPublicOnly(t *testing.T) {
	listing := testListing(uuid.New())
	svc := newGate(t, listing, nil, nil)

	view, err := svc.ResolveListing(context.Background(), uuid.Nil, listing.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Reason != enums.AccessReasonLoginRequired {
		t.Fatalf("unexpected reason %s", view.Reason)
	}
	if view.Confidential != nil {
		t.Fatal("confidential fields must stay hidden")
	}
	if view.Public.Title != listing.Title {
		t.Fatalf("unexpected public fields %+v", view.Public)
	}
}

func TestResolveListingOwnerBypassesGuards(t *testing.T) {
	sellerID := uuid.New()
	listing := testListing(sellerID)
	svc := newGate(t, listing, nil, nil)

	view, err := svc.ResolveListing(context.Background(), sellerID, listing.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Reason != enums.AccessReasonGranted {
		t.Fatalf("unexpected reason %s", view.Reason)
	}
	if view.Confidential == nil || view.Confidential.BrandName != listing.BrandName {
		t.Fatalf("owner must see confidential fields got %+v", view.Confidential)
	}
}

func TestResolveListingRequiresNdaBeforeVerification(t *testing.T) {
	listing := testListing(uuid.New())
	viewerID := uuid.New()
	// Verified but without an NDA: the NDA guard fires first.
	verification := &models.BuyerVerification{UserID: viewerID, Status: enums.VerificationStatusVerified}
	svc := newGate(t, listing, nil, verification)

	view, err := svc.ResolveListing(context.Background(), viewerID, listing.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Reason != enums.AccessReasonNdaRequired {
		t.Fatalf("unexpected reason %s", view.Reason)
	}
	if view.Confidential != nil {
		t.Fatal("confidential fields must stay hidden")
	}
}

func TestResolveListingUnverifiedViewerBlocked(t *testing.T) {
	listing := testListing(uuid.New())
	viewerID := uuid.New()
	nda := &models.NdaAgreement{BuyerID: viewerID, ListingID: listing.ID}
	svc := newGate(t, listing, nda, nil)

	view, err := svc.ResolveListing(context.Background(), viewerID, listing.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Reason != enums.AccessReasonVerificationRequired {
		t.Fatalf("unexpected reason %s", view.Reason)
	}
}

func TestResolveListingGrantedViewer(t *testing.T) {
	listing := testListing(uuid.New())
	viewerID := uuid.New()
	nda := &models.NdaAgreement{BuyerID: viewerID, ListingID: listing.ID}
	verification := &models.BuyerVerification{UserID: viewerID, Status: enums.VerificationStatusVerified}
	svc := newGate(t, listing, nda, verification)

	view, err := svc.ResolveListing(context.Background(), viewerID, listing.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Reason != enums.AccessReasonGranted {
		t.Fatalf("unexpected reason %s", view.Reason)
	}
	if view.Confidential == nil || view.Confidential.OrganicTraffic != listing.OrganicTraffic {
		t.Fatalf("unexpected confidential fields %+v", view.Confidential)
	}
}

func TestResolveListingNotFound(t *testing.T) {
	svc := newGate(t, nil, nil, nil)

	_, err := svc.ResolveListing(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}
