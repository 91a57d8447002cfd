package models

import "time"

// ShippingInfo holds the address fields collected at checkout.
type ShippingInfo struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order represents a placed order appended to the user record. The ID is
// client-generated; status transitions after creation belong to the backend.
type Order struct {
	ID            string       `json:"id"`
	Items         []CartItem   `json:"items"`
	Total         float64      `json:"total"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	PaymentMethod string       `json:"paymentMethod"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentCreditCard = "creditCard"
	PaymentPaypal     = "paypal"
	PaymentCash       = "cash"
)
