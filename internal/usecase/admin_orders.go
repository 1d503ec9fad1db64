package usecase

import (
	"context"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

// ConfirmPayment is the back-office counterpart of the webhook: staff
// verifying a bank transfer or cash payment mark the order paid by hand.
// It rides the same idempotent settle operation, so a webhook racing an
// admin click cannot double-decrement.
type ConfirmPayment struct {
	orders  OrderRepo
	settler *PaymentSettler
}

func NewConfirmPayment(orders OrderRepo, settler *PaymentSettler) *ConfirmPayment {
	return &ConfirmPayment{orders: orders, settler: settler}
}

type ConfirmPaymentOutput struct {
	Applied bool
}

func (uc *ConfirmPayment) Execute(ctx context.Context, orderID string) (ConfirmPaymentOutput, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return ConfirmPaymentOutput{}, &PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return ConfirmPaymentOutput{}, ErrNotFound
	}

	applied, err := uc.settler.MarkPaid(ctx, order, nil)
	if err != nil {
		return ConfirmPaymentOutput{}, err
	}
	return ConfirmPaymentOutput{Applied: applied}, nil
}

// UpdateShipping moves a paid order along the fulfillment track:
// confirmed -> shipped (with optional tracking number) -> delivered.
type UpdateShipping struct {
	orders OrderRepo
	cache  OrderCache
}

func NewUpdateShipping(orders OrderRepo, cache OrderCache) *UpdateShipping {
	return &UpdateShipping{orders: orders, cache: cache}
}

type UpdateShippingInput struct {
	OrderID        string
	Status         string
	TrackingNumber string
}

func (uc *UpdateShipping) Execute(ctx context.Context, in UpdateShippingInput) error {
	to := domain.Status(in.Status)
	if to != domain.StatusShipped && to != domain.StatusDelivered {
		return &ValidationError{Reason: "status must be shipped or delivered"}
	}

	order, err := uc.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return &PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return ErrNotFound
	}
	if !order.CanShipTransition(to) {
		return &ValidationError{Reason: "order cannot move from " + string(order.Status) + " to " + in.Status}
	}

	tracking := in.TrackingNumber
	if tracking == "" {
		tracking = order.TrackingNumber
	}
	if err := uc.orders.SetShipping(ctx, in.OrderID, to, tracking); err != nil {
		return &PersistenceError{Op: "set shipping", Err: err}
	}
	_ = uc.cache.SetStatus(ctx, in.OrderID, in.Status)
	return nil
}
