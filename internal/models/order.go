package models

import "time"

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusRejected  OrderStatus = "rejected"
	StatusCancelled OrderStatus = "cancelled"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

// DeliveryType selects between store pickup and home delivery.
type DeliveryType string

const (
	DeliveryPickup DeliveryType = "pickup"
	DeliveryHome   DeliveryType = "delivery"
)

// Valid reports whether t is one of the two known delivery types.
func (t DeliveryType) Valid() bool {
	return t == DeliveryPickup || t == DeliveryHome
}

// Sentiment is a label/score pair attached to a review by an external
// classification service after the review has been written.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Order is a confirmed cake order. Price fields are snapshotted at creation
// time; TotalPrice always equals OriginalPrice*Size + DeliveryCharge -
// DiscountAmount, clamped at zero.
type Order struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	ProductID      string       `json:"productId"`
	ProductName    string       `json:"productName"`
	Size           int          `json:"size"` // kg, 2..12
	DeliveryType   DeliveryType `json:"deliveryType"`
	DeliveryDate   string       `json:"deliveryDate"` // YYYY-MM-DD
	DeliveryTime   string       `json:"deliveryTime"`
	Area           string       `json:"area"`
	Address        string       `json:"address"`
	Phone          string       `json:"phone"`
	Instruction    string       `json:"instruction,omitempty"`
	CustomizeImage string       `json:"customizeImage,omitempty"`

	OriginalPrice  int64  `json:"originalPrice"` // catalog price per kg at order time
	SizeMultiplier int    `json:"sizeMultiplier"`
	DeliveryCharge int64  `json:"deliveryCharge"`
	DiscountAmount int64  `json:"discountAmount"`
	CouponCode     string `json:"couponCode,omitempty"`
	TotalPrice     int64  `json:"totalPrice"`

	Status       OrderStatus `json:"status"`
	Rating       int         `json:"rating,omitempty"` // 1..5, zero means unrated
	Review       string      `json:"review,omitempty"`
	Sentiment    *Sentiment  `json:"sentiment,omitempty"`
	AdminMessage string      `json:"adminMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
