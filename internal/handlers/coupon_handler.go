package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sweetlayer/cakeshop/backend/internal/middleware"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
	"github.com/sweetlayer/cakeshop/backend/internal/pricing"
)

// CouponHandler pre-validates coupons for the checkout UI. Validation here
// never consumes the coupon; consumption happens atomically at order
// creation.
type CouponHandler struct {
	coupons orders.CouponRepository
	log     *slog.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons orders.CouponRepository, log *slog.Logger) *CouponHandler {
	return &CouponHandler{
		coupons: coupons,
		log:     log,
	}
}

// ValidateCoupon handles GET /api/coupons/{couponCode}
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated", h.log)
		return
	}

	code := chi.URLParam(r, "couponCode")
	coupon, err := h.coupons.GetByCode(r.Context(), code)
	if err == nil {
		err = pricing.ValidateCoupon(coupon, identity.UserID, time.Now())
	}
	if err != nil {
		status, message := statusForOrderError(err)
		WriteJSON(w, status, map[string]interface{}{
			"valid":   false,
			"coupon":  code,
			"message": message,
		}, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"valid":           true,
		"coupon":          coupon.Code,
		"discountPercent": coupon.DiscountPercent,
		"message":         coupon.Message,
	}, h.log)
}
