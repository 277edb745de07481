package entitlements

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealroom-backend/pkg/errors"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type stubMembershipsRepo struct {
	membership  *models.Membership
	plan        *models.Plan
	plans       map[uuid.UUID]*models.Plan
	activations map[uuid.UUID]uuid.UUID
	created     *models.Membership
	updates     map[string]any
	expired     int64
}

func (s *stubMembershipsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubMembershipsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	if s.membership == nil || s.membership.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.membership, nil
}

func (s *stubMembershipsRepo) Create(ctx context.Context, membership *models.Membership) (*models.Membership, error) {
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	s.created = membership
	s.membership = membership
	return membership, nil
}

func (s *stubMembershipsRepo) Update(ctx context.Context, membershipID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubMembershipsRepo) RecordActivation(ctx context.Context, activation *models.EntitlementActivation) (bool, error) {
	if s.activations == nil {
		s.activations = make(map[uuid.UUID]uuid.UUID)
	}
	if _, exists := s.activations[activation.OrderID]; exists {
		return false, nil
	}
	s.activations[activation.OrderID] = activation.MembershipID
	return true, nil
}

func (s *stubMembershipsRepo) FindPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	if plan, ok := s.plans[planID]; ok {
		return plan, nil
	}
	if s.plan == nil || s.plan.ID != planID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.plan, nil
}

func (s *stubMembershipsRepo) ExpireLapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	return s.expired, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, now time.Time) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, logger.New(logger.Options{ServiceName: "entitlements-test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func completedOrder(buyerID, planID uuid.UUID) *models.Order {
	return &models.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Status:  enums.OrderStatusCompleted,
		Items: []models.OrderItem{
			{PlanID: planID, Qty: 1, UnitPriceCents: 4900, TotalCents: 4900},
		},
	}
}

func TestActivateForOrderCreatesMembership(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	plan := &models.Plan{ID: uuid.New(), Name: "Buyer Pro", BillingInterval: enums.BillingIntervalMonthly, Active: true}
	repo := &stubMembershipsRepo{plan: plan}
	svc := newTestService(t, repo, now)

	order := completedOrder(buyerID, plan.ID)
	membership, err := svc.ActivateForOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if membership.Status != enums.MembershipStatusActive {
		t.Fatalf("unexpected status %s", membership.Status)
	}
	if !membership.RenewsAt.Equal(now.AddDate(0, 1, 0)) {
		t.Fatalf("unexpected renews_at %s", membership.RenewsAt)
	}
	if membership.LastOrderID == nil || *membership.LastOrderID != order.ID {
		t.Fatalf("unexpected last order id %v", membership.LastOrderID)
	}
	if repo.created == nil {
		t.Fatal("expected membership created")
	}
}

func TestActivateForOrderReplayIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	plan := &models.Plan{ID: uuid.New(), BillingInterval: enums.BillingIntervalMonthly}
	order := completedOrder(buyerID, plan.ID)
	orderID := order.ID
	renews := now.AddDate(0, 1, 0)
	membershipID := uuid.New()
	repo := &stubMembershipsRepo{
		plan: plan,
		membership: &models.Membership{
			ID:          membershipID,
			UserID:      buyerID,
			PlanID:      plan.ID,
			Status:      enums.MembershipStatusActive,
			RenewsAt:    renews,
			LastOrderID: &orderID,
		},
		activations: map[uuid.UUID]uuid.UUID{orderID: membershipID},
	}
	svc := newTestService(t, repo, now)

	membership, err := svc.ActivateForOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !membership.RenewsAt.Equal(renews) {
		t.Fatalf("replay must not extend renewal got %s", membership.RenewsAt)
	}
	if repo.updates != nil {
		t.Fatalf("replay must not update got %v", repo.updates)
	}
}

func TestActivateForOrderReplayAfterLaterOrderDoesNotExtend(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	plan := &models.Plan{ID: uuid.New(), Kind: enums.PlanKindMembership, BillingInterval: enums.BillingIntervalMonthly}
	repo := &stubMembershipsRepo{plan: plan}
	svc := newTestService(t, repo, now)

	first := completedOrder(buyerID, plan.ID)
	if _, err := svc.ActivateForOrder(context.Background(), first); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}

	second := completedOrder(buyerID, plan.ID)
	renewed, err := svc.ActivateForOrder(context.Background(), second)
	if err != nil {
		t.Fatalf("renewal failed: %v", err)
	}
	if !renewed.RenewsAt.Equal(now.AddDate(0, 2, 0)) {
		t.Fatalf("unexpected renews_at after renewal %s", renewed.RenewsAt)
	}

	// Replaying the first order after a later renewal must not stack another
	// billing interval on top.
	repo.updates = nil
	replayed, err := svc.ActivateForOrder(context.Background(), first)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replayed.RenewsAt.Equal(renewed.RenewsAt) {
		t.Fatalf("replayed order extended renewal: had %s now %s", renewed.RenewsAt, replayed.RenewsAt)
	}
	if repo.updates != nil {
		t.Fatalf("replay must not update got %v", repo.updates)
	}
}

func TestActivateForOrderPrefersMembershipPlan(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	rentalPlan := &models.Plan{ID: uuid.New(), Kind: enums.PlanKindAgentRental, BillingInterval: enums.BillingIntervalMonthly}
	membershipPlan := &models.Plan{ID: uuid.New(), Kind: enums.PlanKindMembership, BillingInterval: enums.BillingIntervalYearly}
	repo := &stubMembershipsRepo{
		plans: map[uuid.UUID]*models.Plan{
			rentalPlan.ID:     rentalPlan,
			membershipPlan.ID: membershipPlan,
		},
	}
	svc := newTestService(t, repo, now)

	// The membership plan wins no matter where the client put it in the cart.
	order := &models.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Status:  enums.OrderStatusCompleted,
		Items: []models.OrderItem{
			{PlanID: rentalPlan.ID, Qty: 1, UnitPriceCents: 9900, TotalCents: 9900},
			{PlanID: membershipPlan.ID, Qty: 1, UnitPriceCents: 4900, TotalCents: 4900},
		},
	}
	membership, err := svc.ActivateForOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if membership.PlanID != membershipPlan.ID {
		t.Fatalf("unexpected plan %s", membership.PlanID)
	}
	if !membership.RenewsAt.Equal(now.AddDate(1, 0, 0)) {
		t.Fatalf("unexpected renews_at %s", membership.RenewsAt)
	}
}

func TestActivateForOrderRenewalExtendsFromRenewsAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	plan := &models.Plan{ID: uuid.New(), BillingInterval: enums.BillingIntervalMonthly}
	// Renewing ten days before expiry keeps the remaining paid-for time.
	currentRenews := now.AddDate(0, 0, 10)
	previousOrder := uuid.New()
	repo := &stubMembershipsRepo{
		plan: plan,
		membership: &models.Membership{
			ID:          uuid.New(),
			UserID:      buyerID,
			PlanID:      plan.ID,
			Status:      enums.MembershipStatusActive,
			RenewsAt:    currentRenews,
			LastOrderID: &previousOrder,
		},
	}
	svc := newTestService(t, repo, now)

	membership, err := svc.ActivateForOrder(context.Background(), completedOrder(buyerID, plan.ID))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !membership.RenewsAt.Equal(currentRenews.AddDate(0, 1, 0)) {
		t.Fatalf("unexpected renews_at %s", membership.RenewsAt)
	}
}

func TestActivateForOrderPlanChangeReplacesMembership(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	newPlan := &models.Plan{ID: uuid.New(), BillingInterval: enums.BillingIntervalYearly}
	previousOrder := uuid.New()
	canceled := now.Add(-time.Hour)
	repo := &stubMembershipsRepo{
		plan: newPlan,
		membership: &models.Membership{
			ID:          uuid.New(),
			UserID:      buyerID,
			PlanID:      uuid.New(),
			Status:      enums.MembershipStatusExpired,
			RenewsAt:    now.Add(-24 * time.Hour),
			CanceledAt:  &canceled,
			LastOrderID: &previousOrder,
		},
	}
	svc := newTestService(t, repo, now)

	membership, err := svc.ActivateForOrder(context.Background(), completedOrder(buyerID, newPlan.ID))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if membership.PlanID != newPlan.ID {
		t.Fatalf("unexpected plan %s", membership.PlanID)
	}
	if membership.Status != enums.MembershipStatusActive {
		t.Fatalf("unexpected status %s", membership.Status)
	}
	if !membership.RenewsAt.Equal(now.AddDate(1, 0, 0)) {
		t.Fatalf("unexpected renews_at %s", membership.RenewsAt)
	}
	if membership.CanceledAt != nil {
		t.Fatal("expected canceled_at cleared")
	}
}

func TestActivateForOrderRequiresCompletedOrder(t *testing.T) {
	repo := &stubMembershipsRepo{}
	svc := newTestService(t, repo, time.Now().UTC())

	order := completedOrder(uuid.New(), uuid.New())
	order.Status = enums.OrderStatusPending
	_, err := svc.ActivateForOrder(context.Background(), order)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	canceled := now.Add(-time.Hour)
	repo := &stubMembershipsRepo{
		membership: &models.Membership{
			ID:         uuid.New(),
			UserID:     buyerID,
			Status:     enums.MembershipStatusCancelled,
			CanceledAt: &canceled,
		},
	}
	svc := newTestService(t, repo, now)

	membership, err := svc.Cancel(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if membership.Status != enums.MembershipStatusCancelled {
		t.Fatalf("unexpected status %s", membership.Status)
	}
	if repo.updates != nil {
		t.Fatalf("replay must not update got %v", repo.updates)
	}
}

func TestCancelActiveMembership(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	repo := &stubMembershipsRepo{
		membership: &models.Membership{
			ID:       uuid.New(),
			UserID:   buyerID,
			Status:   enums.MembershipStatusActive,
			RenewsAt: now.AddDate(0, 0, 20),
		},
	}
	svc := newTestService(t, repo, now)

	membership, err := svc.Cancel(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if membership.Status != enums.MembershipStatusCancelled {
		t.Fatalf("unexpected status %s", membership.Status)
	}
	if membership.CanceledAt == nil || !membership.CanceledAt.Equal(now) {
		t.Fatalf("unexpected canceled_at %v", membership.CanceledAt)
	}
}

func TestGetForUserMissing(t *testing.T) {
	svc := newTestService(t, &stubMembershipsRepo{}, time.Now().UTC())

	_, err := svc.GetForUser(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}
