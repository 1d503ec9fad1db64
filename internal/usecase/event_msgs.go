package usecase

import "time"

// Published on the order events exchange after a successful checkout.
type OrderCreatedMsg struct {
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Published when an order transitions into paid/confirmed, whichever path
// (webhook or admin confirmation) wins the transition.
type OrderPaidMsg struct {
	OrderID   string `json:"orderId"`
	UserID    string `json:"userId"`
	PaymentID string `json:"paymentId,omitempty"`
	Total     string `json:"total"`
}

// Consumed from the fulfillment topic: the warehouse system reporting a
// shipment event for an order.
type FulfillmentEventMsg struct {
	OrderID        string `json:"orderId"`
	Event          string `json:"event"` // "shipped" | "delivered"
	TrackingNumber string `json:"trackingNumber,omitempty"`
}
