package kafka

import (
	"context"
	"errors"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/logging"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

// FulfillmentEventHandler maps warehouse carrier events onto order shipping
// status. Events for orders in the wrong state (paid race, cancelled order)
// are dropped, not retried: replaying them cannot make the transition legal.
type FulfillmentEventHandler struct {
	shipping *usecase.UpdateShipping
}

func NewFulfillmentEventHandler(shipping *usecase.UpdateShipping) *FulfillmentEventHandler {
	return &FulfillmentEventHandler{shipping: shipping}
}

func (h *FulfillmentEventHandler) Handle(ctx context.Context, ev usecase.FulfillmentEventMsg) error {
	var to domain.Status
	switch ev.Event {
	case "shipped":
		to = domain.StatusShipped
	case "delivered":
		to = domain.StatusDelivered
	default:
		logging.FromCtx(ctx).Warn("unknown fulfillment event", "event", ev.Event, "order_id", ev.OrderID)
		return nil
	}

	err := h.shipping.Execute(ctx, usecase.UpdateShippingInput{
		OrderID:        ev.OrderID,
		Status:         string(to),
		TrackingNumber: ev.TrackingNumber,
	})
	if err != nil {
		var valErr *usecase.ValidationError
		if errors.Is(err, usecase.ErrNotFound) || errors.As(err, &valErr) {
			logging.FromCtx(ctx).Warn("dropping fulfillment event",
				"order_id", ev.OrderID, "event", ev.Event, "err", err)
			return nil
		}
		return err
	}
	return nil
}
