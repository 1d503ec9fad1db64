package usecase

import (
	"context"
	"time"

	"github.com/nahuarce12/ecommerce/internal/logging"
)

// ExpireOrders cancels orders still awaiting payment past the age threshold.
// A late webhook for a cancelled order then misses the conditional
// transition and becomes a no-op, which is exactly the intent.
type ExpireOrders struct {
	orders     OrderRepo
	pendingTTL time.Duration
}

func NewExpireOrders(orders OrderRepo, pendingTTL time.Duration) *ExpireOrders {
	return &ExpireOrders{orders: orders, pendingTTL: pendingTTL}
}

func (uc *ExpireOrders) Execute(ctx context.Context) (int64, error) {
	n, err := uc.orders.CancelStalePending(ctx, uc.pendingTTL)
	if err != nil {
		return 0, &PersistenceError{Op: "cancel stale orders", Err: err}
	}
	if n > 0 {
		logging.FromCtx(ctx).Info("cancelled expired orders", "count", n)
	}
	return n, nil
}
