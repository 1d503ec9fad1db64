package queue

import (
	"context"

	"github.com/nahuarce12/ecommerce/internal/logging"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

// Notifier is the port to whatever tells the buyer and the back office
// about a settled order (transactional email, push, chat bot).
type Notifier interface {
	OrderPaid(ctx context.Context, orderID, userID, total string) error
}

// OrderPaidHandler fans a settled order out to the notifier. Intended for
// use with queue.JSONHandler[usecase.OrderPaidMsg].
type OrderPaidHandler struct {
	notifier Notifier
}

func NewOrderPaidHandler(n Notifier) *OrderPaidHandler {
	return &OrderPaidHandler{notifier: n}
}

func (h *OrderPaidHandler) HandlePaid(ctx context.Context, msg usecase.OrderPaidMsg) error {
	return h.notifier.OrderPaid(ctx, msg.OrderID, msg.UserID, msg.Total)
}

// LogNotifier is the default Notifier until a real channel is wired.
type LogNotifier struct{}

func (LogNotifier) OrderPaid(ctx context.Context, orderID, userID, total string) error {
	logging.FromCtx(ctx).Info("order paid notification", "order_id", orderID, "user_id", userID, "total", total)
	return nil
}
