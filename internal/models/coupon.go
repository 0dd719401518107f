package models

import "time"

// Coupon is a single-owner, single-use percentage discount with an optional
// expiry. IsUsed flips to true at most once, at order-creation time.
type Coupon struct {
	Code            string     `json:"code"`
	Message         string     `json:"message,omitempty"`
	DiscountPercent int        `json:"discountPercent"` // 1..100
	UserID          string     `json:"userId"`
	IsUsed          bool       `json:"isUsed"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
