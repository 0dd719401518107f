package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

func TestQuoteOrder_ReferenceScenario(t *testing.T) {
	// 1000/kg, 3 kg, home delivery, 10% coupon.
	coupon := &models.Coupon{Code: "TEN", DiscountPercent: 10, UserID: "u1"}

	q := QuoteOrder(1000, 3, models.DeliveryHome, coupon)

	assert.Equal(t, int64(3000), q.BasePrice)
	assert.Equal(t, int64(50), q.DeliveryCharge)
	assert.Equal(t, int64(300), q.DiscountAmount)
	assert.Equal(t, int64(2750), q.Total)
}

func TestTotal_InvariantAcrossSizesAndDeliveryTypes(t *testing.T) {
	const pricePerKg = int64(750)

	for size := 2; size <= 12; size++ {
		for _, dt := range []models.DeliveryType{models.DeliveryPickup, models.DeliveryHome} {
			q := QuoteOrder(pricePerKg, size, dt, nil)

			wantDelivery := int64(0)
			if dt == models.DeliveryHome {
				wantDelivery = 50
			}
			assert.Equal(t, wantDelivery, q.DeliveryCharge, "size=%d type=%s", size, dt)
			assert.Equal(t, pricePerKg*int64(size)+wantDelivery, q.Total, "size=%d type=%s", size, dt)
		}
	}
}

func TestDiscountAmount_FloorsToWholeUnits(t *testing.T) {
	// 3% of 1050 is 31.5; currency math floors.
	coupon := &models.Coupon{Code: "THREE", DiscountPercent: 3}
	assert.Equal(t, int64(31), DiscountAmount(1050, coupon))

	assert.Zero(t, DiscountAmount(1050, nil))
}

func TestTotal_ClampsAtZero(t *testing.T) {
	assert.Equal(t, int64(0), Total(100, 0, 500))
	assert.Equal(t, int64(0), Total(0, 0, 0))
}

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)
	used := now.Add(-48 * time.Hour)

	tests := []struct {
		name    string
		coupon  *models.Coupon
		userID  string
		wantErr error
	}{
		{
			name:    "missing coupon",
			coupon:  nil,
			userID:  "u1",
			wantErr: ErrCouponNotFound,
		},
		{
			name:    "owned by another user",
			coupon:  &models.Coupon{Code: "X", UserID: "u2", DiscountPercent: 5},
			userID:  "u1",
			wantErr: ErrCouponNotOwned,
		},
		{
			name:    "already used",
			coupon:  &models.Coupon{Code: "X", UserID: "u1", DiscountPercent: 5, IsUsed: true, UsedAt: &used},
			userID:  "u1",
			wantErr: ErrCouponUsed,
		},
		{
			name:    "expired",
			coupon:  &models.Coupon{Code: "X", UserID: "u1", DiscountPercent: 5, ExpiresAt: &past},
			userID:  "u1",
			wantErr: ErrCouponExpired,
		},
		{
			name:   "valid with future expiry",
			coupon: &models.Coupon{Code: "X", UserID: "u1", DiscountPercent: 5, ExpiresAt: &future},
			userID: "u1",
		},
		{
			name:   "valid without expiry",
			coupon: &models.Coupon{Code: "X", UserID: "u1", DiscountPercent: 5},
			userID: "u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoupon(tt.coupon, tt.userID, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateCoupon_OwnershipCheckedBeforeUsage(t *testing.T) {
	// A foreign coupon must fail on ownership even when it is also used.
	c := &models.Coupon{Code: "X", UserID: "u2", DiscountPercent: 5, IsUsed: true}
	assert.ErrorIs(t, ValidateCoupon(c, "u1", time.Now()), ErrCouponNotOwned)
}
