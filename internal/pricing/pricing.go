// Package pricing computes order totals and validates coupons. Every
// function is pure; coupon consumption is a repository concern and happens
// elsewhere.
package pricing

import (
	"errors"
	"time"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

// HomeDeliveryCharge is the flat surcharge applied only for home delivery.
const HomeDeliveryCharge int64 = 50

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponNotOwned = errors.New("coupon belongs to another user")
	ErrCouponUsed     = errors.New("coupon has already been used")
	ErrCouponExpired  = errors.New("coupon has expired")
)

// BasePrice is the catalog price per kg scaled by the cake size.
func BasePrice(pricePerKg int64, size int) int64 {
	return pricePerKg * int64(size)
}

// DeliveryCharge returns the flat surcharge for home delivery, zero for
// pickup.
func DeliveryCharge(t models.DeliveryType) int64 {
	if t == models.DeliveryHome {
		return HomeDeliveryCharge
	}
	return 0
}

// ValidateCoupon checks that c exists, is owned by userID, is unused and has
// not expired at now. It never mutates the coupon.
func ValidateCoupon(c *models.Coupon, userID string, now time.Time) error {
	switch {
	case c == nil:
		return ErrCouponNotFound
	case c.UserID != userID:
		return ErrCouponNotOwned
	case c.IsUsed:
		return ErrCouponUsed
	case c.ExpiresAt != nil && c.ExpiresAt.Before(now):
		return ErrCouponExpired
	}
	return nil
}

// DiscountAmount is the coupon's percentage of the base price, floored to a
// whole currency unit. A nil coupon yields no discount.
func DiscountAmount(basePrice int64, c *models.Coupon) int64 {
	if c == nil {
		return 0
	}
	return basePrice * int64(c.DiscountPercent) / 100
}

// Total combines the price components, clamped at zero so an oversized
// discount can never produce a negative amount due.
func Total(basePrice, deliveryCharge, discountAmount int64) int64 {
	total := basePrice + deliveryCharge - discountAmount
	if total < 0 {
		return 0
	}
	return total
}

// Quote is the full price breakdown for one order.
type Quote struct {
	BasePrice      int64 `json:"basePrice"`
	DeliveryCharge int64 `json:"deliveryCharge"`
	DiscountAmount int64 `json:"discountAmount"`
	Total          int64 `json:"total"`
}

// QuoteOrder computes the complete breakdown in one call. The coupon, if
// non-nil, is assumed to have passed ValidateCoupon already.
func QuoteOrder(pricePerKg int64, size int, t models.DeliveryType, c *models.Coupon) Quote {
	base := BasePrice(pricePerKg, size)
	delivery := DeliveryCharge(t)
	discount := DiscountAmount(base, c)
	return Quote{
		BasePrice:      base,
		DeliveryCharge: delivery,
		DiscountAmount: discount,
		Total:          Total(base, delivery, discount),
	}
}
