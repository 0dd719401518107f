package models

// BookingDraft is the transient collection of order fields gathered across
// the booking dialogue. Nothing in it is durable until an order is created
// from it.
type BookingDraft struct {
	ProductID      string       `json:"productId"`
	ProductName    string       `json:"productName"`
	PricePerKg     int64        `json:"pricePerKg"`
	Size           int          `json:"size"`
	DeliveryType   DeliveryType `json:"deliveryType"`
	DeliveryDate   string       `json:"deliveryDate"`
	DeliveryTime   string       `json:"deliveryTime"`
	Area           string       `json:"area"`
	Address        string       `json:"address"`
	Phone          string       `json:"phone"`
	Instruction    string       `json:"instruction,omitempty"`
	CustomizeImage string       `json:"customizeImage,omitempty"`
	CouponCode     string       `json:"couponCode,omitempty"`
}
