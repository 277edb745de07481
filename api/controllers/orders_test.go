package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/api/middleware"
	internalorders "github.com/angelmondragon/dealroom-backend/internal/orders"
	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
	"github.com/angelmondragon/dealroom-backend/pkg/pagination"
)

type stubOrdersService struct {
	createFn       func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error)
	getFn          func(ctx context.Context, orderID uuid.UUID) (*internalorders.OrderDetail, error)
	updateStatusFn func(ctx context.Context, input internalorders.UpdateStatusInput) (*models.Order, error)
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	return s.createFn(ctx, input)
}

func (s *stubOrdersService) VerifyPayment(ctx context.Context, input internalorders.VerifyPaymentInput) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, input internalorders.UpdateStatusInput) (*models.Order, error) {
	return s.updateStatusFn(ctx, input)
}

func (s *stubOrdersService) Get(ctx context.Context, orderID uuid.UUID) (*internalorders.OrderDetail, error) {
	return s.getFn(ctx, orderID)
}

func (s *stubOrdersService) ListAdmin(ctx context.Context, params pagination.Params, filters internalorders.AdminOrderFilters) (*internalorders.AdminOrderList, error) {
	return &internalorders.AdminOrderList{}, nil
}

func (s *stubOrdersService) ReconcilePendingActivations(ctx context.Context, batch int) (int, error) {
	return 0, nil
}

func authedRequest(method, url string, body string, userID uuid.UUID, role enums.MemberRole) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCreateOrderReturnsCreated(t *testing.T) {
	buyerID := uuid.New()
	planID := uuid.New()
	svc := &stubOrdersService{
		createFn: func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
			if input.BuyerID != buyerID {
				t.Fatalf("expected buyer %s got %s", buyerID, input.BuyerID)
			}
			if len(input.Items) != 1 || input.Items[0].PlanID != planID || input.Items[0].Qty != 2 {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			return &models.Order{ID: uuid.New(), BuyerID: buyerID, Status: enums.OrderStatusPending}, nil
		},
	}

	body := `{"items":[{"plan_id":"` + planID.String() + `","qty":2}]}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, buyerID, enums.MemberRoleBuyer)
	resp := httptest.NewRecorder()
	CreateOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.Order `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order got %s", envelope.Data.Status)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc := &stubOrdersService{
		createFn: func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/orders", `{"items":[]}`, uuid.New(), enums.MemberRoleBuyer)
	resp := httptest.NewRecorder()
	CreateOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetOrderHidesOtherBuyersOrders(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{
		getFn: func(ctx context.Context, id uuid.UUID) (*internalorders.OrderDetail, error) {
			return &internalorders.OrderDetail{Order: models.Order{ID: id, BuyerID: owner}}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "", uuid.New(), enums.MemberRoleBuyer)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	GetOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetOrderAllowsAdmin(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{
		getFn: func(ctx context.Context, id uuid.UUID) (*internalorders.OrderDetail, error) {
			return &internalorders.OrderDetail{Order: models.Order{ID: id, BuyerID: owner}}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "", uuid.New(), enums.MemberRoleAdmin)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	GetOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCancelOrderPassesActorThrough(t *testing.T) {
	buyerID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{
		updateStatusFn: func(ctx context.Context, input internalorders.UpdateStatusInput) (*models.Order, error) {
			if input.NewStatus != enums.OrderStatusCancelled {
				t.Fatalf("expected cancelled got %s", input.NewStatus)
			}
			if input.ActorID != buyerID {
				t.Fatalf("expected actor %s got %s", buyerID, input.ActorID)
			}
			return &models.Order{ID: orderID, BuyerID: buyerID, Status: enums.OrderStatusCancelled}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", "", buyerID, enums.MemberRoleBuyer)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	CancelOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
