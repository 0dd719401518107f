package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sweetlayer/cakeshop/backend/internal/middleware"
	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
	"github.com/sweetlayer/cakeshop/backend/internal/repository"
	"github.com/sweetlayer/cakeshop/backend/pkg/logger"
)

func newOrderFixture(t *testing.T) (*OrderHandler, *orders.Service, *repository.InMemoryCouponStore) {
	t.Helper()
	log := logger.New("error")
	coupons := repository.NewInMemoryCouponStore(models.Coupon{
		Code:            "SWEET10",
		DiscountPercent: 10,
		UserID:          "user-1",
	})
	svc := orders.NewService(repository.NewInMemoryOrderStore(), coupons, repository.NewInMemoryProductRepository(), nil, log)
	return NewOrderHandler(svc, log), svc, coupons
}

func authedRequest(method, target string, body []byte, userID string, admin bool) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := middleware.WithIdentity(req.Context(), orders.Identity{UserID: userID, Admin: admin})
	return req.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func validDraft() models.BookingDraft {
	return models.BookingDraft{
		ProductID:    "1",
		Size:         3,
		DeliveryType: models.DeliveryHome,
		DeliveryDate: "2026-10-01",
		DeliveryTime: "17:00",
		Area:         "Gomti Nagar",
		Address:      "12 Vipul Khand",
		Phone:        "9876543210",
	}
}

func TestOrderHandler_Create(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(*testing.T, *models.Order)
	}{
		{
			name:           "successful order",
			requestBody:    validDraft(),
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, order *models.Order) {
				if order.ID == "" {
					t.Error("order ID is empty")
				}
				if order.Status != models.StatusPending {
					t.Errorf("status = %s, want pending", order.Status)
				}
				// 1100/kg x 3 kg + 50 home delivery
				if order.TotalPrice != 3350 {
					t.Errorf("total = %d, want 3350", order.TotalPrice)
				}
			},
		},
		{
			name: "discounted order",
			requestBody: func() models.BookingDraft {
				d := validDraft()
				d.CouponCode = "SWEET10"
				return d
			}(),
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, order *models.Order) {
				// floor(3300 * 10 / 100) = 330 off
				if order.DiscountAmount != 330 {
					t.Errorf("discount = %d, want 330", order.DiscountAmount)
				}
				if order.TotalPrice != 3020 {
					t.Errorf("total = %d, want 3020", order.TotalPrice)
				}
			},
		},
		{
			name: "missing phone",
			requestBody: func() models.BookingDraft {
				d := validDraft()
				d.Phone = ""
				return d
			}(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown product",
			requestBody: func() models.BookingDraft {
				d := validDraft()
				d.ProductID = "99999"
				return d
			}(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "unknown coupon",
			requestBody: func() models.BookingDraft {
				d := validDraft()
				d.CouponCode = "NOPE"
				return d
			}(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("failed to marshal request: %v", err)
				}
			}

			req := authedRequest(http.MethodPost, "/api/orders", body, "user-1", false)
			w := httptest.NewRecorder()

			handler.Create(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var order models.Order
				if err := json.NewDecoder(w.Body).Decode(&order); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				tt.checkResponse(t, &order)
			}
		})
	}
}

func TestOrderHandler_Create_Unauthenticated(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	body, _ := json.Marshal(validDraft())
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestOrderHandler_Cancel(t *testing.T) {
	handler, svc, _ := newOrderFixture(t)

	order, err := svc.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	req := authedRequest(http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil, "user-1", false)
	req = withURLParam(req, "orderID", order.ID)
	w := httptest.NewRecorder()

	handler.Cancel(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got models.Order
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestOrderHandler_Cancel_AfterApproval(t *testing.T) {
	handler, svc, _ := newOrderFixture(t)

	order, err := svc.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	admin := orders.Identity{UserID: "admin-1", Admin: true}
	if _, err := svc.AdvanceStatus(context.Background(), order.ID, models.StatusApproved, admin, ""); err != nil {
		t.Fatalf("approve order: %v", err)
	}

	req := authedRequest(http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil, "user-1", false)
	req = withURLParam(req, "orderID", order.ID)
	w := httptest.NewRecorder()

	handler.Cancel(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
}

func TestOrderHandler_Get_OtherUsersOrder(t *testing.T) {
	handler, svc, _ := newOrderFixture(t)

	order, err := svc.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	req := authedRequest(http.MethodGet, "/api/orders/"+order.ID, nil, "user-2", false)
	req = withURLParam(req, "orderID", order.ID)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestOrderHandler_AdvanceStatus(t *testing.T) {
	handler, svc, _ := newOrderFixture(t)

	order, err := svc.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	tests := []struct {
		name           string
		userID         string
		admin          bool
		status         models.OrderStatus
		expectedStatus int
	}{
		{"non-admin rejected", "user-1", false, models.StatusApproved, http.StatusForbidden},
		{"admin approves", "admin-1", true, models.StatusApproved, http.StatusOK},
		{"illegal jump", "admin-1", true, models.StatusDelivered, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]interface{}{"status": tt.status})
			req := authedRequest(http.MethodPut, "/api/admin/orders/"+order.ID+"/status", body, tt.userID, tt.admin)
			req = withURLParam(req, "orderID", order.ID)
			w := httptest.NewRecorder()

			handler.AdvanceStatus(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestOrderHandler_Review(t *testing.T) {
	handler, svc, _ := newOrderFixture(t)

	order, err := svc.Create(context.Background(), validDraft(), "user-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	review := func(rating int) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]interface{}{"rating": rating, "review": "lovely cake"})
		req := authedRequest(http.MethodPost, "/api/orders/"+order.ID+"/review", body, "user-1", false)
		req = withURLParam(req, "orderID", order.ID)
		w := httptest.NewRecorder()
		handler.Review(w, req)
		return w
	}

	// Pending orders cannot be reviewed yet.
	if w := review(5); w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	admin := orders.Identity{UserID: "admin-1", Admin: true}
	if _, err := svc.AdvanceStatus(context.Background(), order.ID, models.StatusApproved, admin, ""); err != nil {
		t.Fatalf("approve order: %v", err)
	}

	if w := review(6); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range rating", w.Code)
	}
	if w := review(5); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestOrderHandler_List_EmptyIsArray(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	req := authedRequest(http.MethodGet, "/api/orders", nil, "user-1", false)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" && got != "[]" {
		t.Errorf("body = %q, want empty array", got)
	}
}
