package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sweetlayer/cakeshop/backend/internal/middleware"
	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
	"github.com/sweetlayer/cakeshop/backend/internal/pricing"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	svc *orders.Service
	log *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(svc *orders.Service, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		svc: svc,
		log: log,
	}
}

// statusForOrderError maps lifecycle errors onto HTTP statuses. Anything
// unrecognized is an internal error; its detail stays out of the response.
func statusForOrderError(err error) (int, string) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, orders.ErrInvalidRating):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, pricing.ErrCouponNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, orders.ErrNotOwner),
		errors.Is(err, orders.ErrNotPending),
		errors.Is(err, orders.ErrAdminOnly),
		errors.Is(err, orders.ErrReviewNotOpen),
		errors.Is(err, orders.ErrNotReorderable),
		errors.Is(err, pricing.ErrCouponNotOwned):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, orders.ErrBadTransition),
		errors.Is(err, pricing.ErrCouponUsed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, pricing.ErrCouponExpired):
		return http.StatusGone, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *OrderHandler) fail(w http.ResponseWriter, operation string, err error) {
	status, message := statusForOrderError(err)
	if status == http.StatusInternalServerError {
		h.log.Error("order operation failed", "operation", operation, "error", err)
	}
	middleware.RecordOrderOperation(operation, false)
	WriteError(w, status, message, h.log)
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var draft models.BookingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.svc.Create(r.Context(), draft, identity.UserID)
	if err != nil {
		h.fail(w, "create", err)
		return
	}

	middleware.RecordOrderOperation("create", true)
	WriteJSON(w, http.StatusCreated, order, h.log)
	h.log.Info("order created", "order_id", order.ID, "user_id", identity.UserID, "total", order.TotalPrice)
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	list, err := h.svc.List(r.Context(), identity)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	middleware.RecordOrderOperation("list", true)
	WriteJSON(w, http.StatusOK, list, h.log)
}

// Get handles GET /api/orders/{orderID}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	order, err := h.svc.Get(r.Context(), chi.URLParam(r, "orderID"), identity)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	middleware.RecordOrderOperation("get", true)
	WriteJSON(w, http.StatusOK, order, h.log)
}

// Modify handles PATCH /api/orders/{orderID}
func (h *OrderHandler) Modify(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var patch orders.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.svc.Modify(r.Context(), chi.URLParam(r, "orderID"), identity, patch)
	if err != nil {
		h.fail(w, "modify", err)
		return
	}
	middleware.RecordOrderOperation("modify", true)
	WriteJSON(w, http.StatusOK, order, h.log)
}

// Cancel handles POST /api/orders/{orderID}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	order, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "orderID"), identity)
	if err != nil {
		h.fail(w, "cancel", err)
		return
	}
	middleware.RecordOrderOperation("cancel", true)
	WriteJSON(w, http.StatusOK, order, h.log)
}

// Review handles POST /api/orders/{orderID}/review
func (h *OrderHandler) Review(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.svc.AttachReview(r.Context(), chi.URLParam(r, "orderID"), identity, req.Rating, req.Review)
	if err != nil {
		h.fail(w, "review", err)
		return
	}
	middleware.RecordOrderOperation("review", true)
	WriteJSON(w, http.StatusOK, order, h.log)
}

// Reorder handles POST /api/orders/{orderID}/reorder
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	draft, err := h.svc.Reorder(r.Context(), chi.URLParam(r, "orderID"), identity)
	if err != nil {
		h.fail(w, "reorder", err)
		return
	}
	middleware.RecordOrderOperation("reorder", true)
	WriteJSON(w, http.StatusOK, draft, h.log)
}

// AdvanceStatus handles PUT /api/admin/orders/{orderID}/status
func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	var req struct {
		Status  models.OrderStatus `json:"status"`
		Message string             `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.svc.AdvanceStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status, identity, req.Message)
	if err != nil {
		h.fail(w, "advance_status", err)
		return
	}
	middleware.RecordOrderOperation("advance_status", true)
	WriteJSON(w, http.StatusOK, order, h.log)
}
