package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending_payment"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodMercadoPago  PaymentMethod = "mercadopago"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodBankTransfer, MethodCash, MethodMercadoPago:
		return PaymentMethod(s), nil
	}
	return "", ErrInvalidPaymentMethod
}

// DefersStock reports whether stock decrement is deferred to payment
// confirmation for this method. Provider-hosted checkout may never complete,
// so stock is held until the webhook reports an approved payment; offline
// methods decrement at order creation.
func (m PaymentMethod) DefersStock() bool {
	return m == MethodMercadoPago
}

// PaymentRefs are the provider-side identifiers persisted onto an order as
// webhook notifications arrive.
type PaymentRefs struct {
	PaymentID       string
	MerchantOrderID string
	PreferenceID    string
}

type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string // kept even if the product is later deleted
	ProductName     string // snapshot, immutable after creation
	Size            string
	Color           string
	Quantity        int
	PriceAtPurchase decimal.Decimal // snapshot, immutable after creation
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              string
	UserID          string
	Status          Status
	PaymentStatus   PaymentStatus
	Total           decimal.Decimal
	ShippingCost    decimal.Decimal
	ShippingAddress string
	PaymentMethod   PaymentMethod
	TrackingNumber  string
	Refs            PaymentRefs
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemsTotal sums line subtotals without shipping.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return errors.New("order has no items")
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	if !o.Total.Equal(o.ItemsTotal().Add(o.ShippingCost)) {
		return errors.New("total does not reconcile with items and shipping")
	}
	return nil
}

// CanShipTransition reports whether the fulfillment status move is legal.
// Shipping progression only applies to paid, confirmed orders.
func (o *Order) CanShipTransition(to Status) bool {
	switch to {
	case StatusShipped:
		return o.Status == StatusConfirmed && o.PaymentStatus == PaymentPaid
	case StatusDelivered:
		return o.Status == StatusShipped
	}
	return false
}
