package usecase

import (
	"context"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/logging"
)

// PaymentSettler is the single place an order becomes paid/confirmed and the
// deferred stock decrement happens. Both the webhook handler and the admin
// confirmation go through it, so whichever path wins the conditional
// transition performs the decrement and the other becomes a no-op.
type PaymentSettler struct {
	orders   OrderRepo
	products ProductRepo
	cache    OrderCache
	events   EventPublisher
}

func NewPaymentSettler(orders OrderRepo, products ProductRepo, cache OrderCache, events EventPublisher) *PaymentSettler {
	return &PaymentSettler{orders: orders, products: products, cache: cache, events: events}
}

// MarkPaid attempts the pending_payment -> paid transition, falling back to
// failed -> paid so a retried payment after a rejection still settles. It
// reports whether this call won a transition; false means the order was
// already settled or cancelled and nothing was mutated.
func (s *PaymentSettler) MarkPaid(ctx context.Context, order *domain.Order, refs *domain.PaymentRefs) (bool, error) {
	applied, err := s.orders.TransitionPayment(ctx, order.ID,
		domain.PaymentPending, domain.PaymentPaid, domain.StatusConfirmed, refs)
	if err != nil {
		return false, &PersistenceError{Op: "transition payment", Err: err}
	}
	if !applied {
		applied, err = s.orders.TransitionPayment(ctx, order.ID,
			domain.PaymentFailed, domain.PaymentPaid, domain.StatusConfirmed, refs)
		if err != nil {
			return false, &PersistenceError{Op: "transition payment", Err: err}
		}
	}
	if !applied {
		return false, nil
	}

	// Deferred stock only: offline methods already decremented at creation.
	// Individual failures are logged and skipped; a retry of the whole
	// notification cannot fix them and must not re-run the transition.
	if order.PaymentMethod.DefersStock() {
		for _, it := range order.Items {
			if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				logging.FromCtx(ctx).Error("stock decrement failed",
					"order_id", order.ID, "product_id", it.ProductID, "qty", it.Quantity, "err", err)
			}
		}
	}

	_ = s.cache.SetStatus(ctx, order.ID, string(domain.StatusConfirmed))

	paymentID := ""
	if refs != nil {
		paymentID = refs.PaymentID
	}
	if err := s.events.PublishOrderPaid(ctx, OrderPaidMsg{
		OrderID:   order.ID,
		UserID:    order.UserID,
		PaymentID: paymentID,
		Total:     order.Total.StringFixed(2),
	}); err != nil {
		logging.FromCtx(ctx).Warn("order.paid publish failed", "order_id", order.ID, "err", err)
	}

	return true, nil
}
