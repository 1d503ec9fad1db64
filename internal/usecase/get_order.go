package usecase

import (
	"context"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

// GetOrder projects an order for the buyer (ownership enforced) or for
// admin staff (any order).
type GetOrder struct {
	orders OrderRepo
	cache  OrderCache
}

func NewGetOrder(orders OrderRepo, cache OrderCache) *GetOrder {
	return &GetOrder{orders: orders, cache: cache}
}

func (uc *GetOrder) Execute(ctx context.Context, userID, orderID string, admin bool) (*domain.Order, error) {
	if !admin && userID == "" {
		return nil, ErrUnauthenticated
	}
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil || (!admin && order.UserID != userID) {
		return nil, ErrNotFound
	}
	return order, nil
}

// Status answers the status-page poll. The cached value is tried first;
// on a miss the order is loaded (ownership enforced) and the cache warmed.
func (uc *GetOrder) Status(ctx context.Context, userID, orderID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if s, ok, err := uc.cache.GetStatus(ctx, orderID); err == nil && ok {
		return s, nil
	}
	order, err := uc.Execute(ctx, userID, orderID, false)
	if err != nil {
		return "", err
	}
	_ = uc.cache.SetStatus(ctx, orderID, string(order.Status))
	return string(order.Status), nil
}

func (uc *GetOrder) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := uc.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	return orders, nil
}
