package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/logging"
)

const idemScopeCheckout = "checkout"

type CreateOrderInput struct {
	UserID           string
	IdempotencyKey   string
	PaymentMethod    string
	ShippingCity     string
	ShippingProvince string
	Lines            []domain.CartLine
}

type CreateOrderOutput struct {
	OrderID       string
	Total         decimal.Decimal
	ShippingCost  decimal.Decimal
	Status        domain.Status
	PaymentStatus domain.PaymentStatus
}

type CreateOrder struct {
	orders   OrderRepo
	products ProductRepo
	profiles ProfileRepo
	idem     IdempotencyStore
	cache    OrderCache
	events   EventPublisher
	rates    domain.ShippingRates
}

func NewCreateOrder(orders OrderRepo, products ProductRepo, profiles ProfileRepo,
	idem IdempotencyStore, cache OrderCache, events EventPublisher, rates domain.ShippingRates) *CreateOrder {
	return &CreateOrder{
		orders:   orders,
		products: products,
		profiles: profiles,
		idem:     idem,
		cache:    cache,
		events:   events,
		rates:    rates,
	}
}

// Execute runs one checkout submission end to end: shipping quote,
// authoritative stock/price re-check, then header + items + stock decrement
// in a single transaction. Prices are snapshotted here and never re-derived.
func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	if in.UserID == "" {
		return CreateOrderOutput{}, ErrUnauthenticated
	}

	// Fast path: idempotency recall
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, idemScopeCheckout+":"+in.UserID, in.IdempotencyKey); ok {
			return CreateOrderOutput{OrderID: id, Status: domain.StatusPending, PaymentStatus: domain.PaymentPending}, nil
		}
	}

	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return CreateOrderOutput{}, &ValidationError{Reason: "invalid payment method"}
	}
	if len(in.Lines) == 0 {
		return CreateOrderOutput{}, &ValidationError{Reason: "cart is empty"}
	}
	if in.ShippingCity == "" || in.ShippingProvince == "" {
		return CreateOrderOutput{}, &ValidationError{Reason: "shipping city and province are required"}
	}

	profile, err := uc.profiles.GetByUserID(ctx, in.UserID)
	if err != nil {
		return CreateOrderOutput{}, &PersistenceError{Op: "fetch profile", Err: err}
	}
	if profile == nil {
		return CreateOrderOutput{}, &ValidationError{Reason: "profile not found"}
	}
	if !profile.HasCompleteShipping() {
		return CreateOrderOutput{}, &ValidationError{Reason: "incomplete shipping address"}
	}

	if in.IdempotencyKey != "" {
		ok, err := uc.idem.TryLock(ctx, idemScopeCheckout+":"+in.UserID, in.IdempotencyKey)
		if err != nil {
			return CreateOrderOutput{}, err
		}
		if !ok {
			return CreateOrderOutput{}, ErrDuplicate
		}
	}

	quote := uc.rates.Quote(in.ShippingCity, in.ShippingProvince)

	// Re-check stock and snapshot authoritative prices. This runs even when
	// the client already validated: time has passed since then.
	orderID := uuid.NewString()
	items := make([]domain.OrderItem, 0, len(in.Lines))
	var shortages []domain.Shortage
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return CreateOrderOutput{}, &ValidationError{Reason: "quantity must be greater than zero"}
		}
		p, err := uc.products.GetPricing(ctx, line.ProductID)
		if err != nil {
			return CreateOrderOutput{}, &PersistenceError{Op: "fetch product " + line.ProductID, Err: err}
		}
		if p == nil {
			return CreateOrderOutput{}, &ValidationError{Reason: "product " + line.ProductID + " not found"}
		}
		if p.Stock < line.Quantity {
			shortages = append(shortages, domain.Shortage{
				ProductID:   p.ID,
				ProductName: p.Name,
				Size:        line.Size,
				Color:       line.Color,
				Requested:   line.Quantity,
				Available:   p.Stock,
			})
			continue
		}
		items = append(items, domain.OrderItem{
			ID:              uuid.NewString(),
			OrderID:         orderID,
			ProductID:       p.ID,
			ProductName:     p.Name,
			Size:            line.Size,
			Color:           line.Color,
			Quantity:        line.Quantity,
			PriceAtPurchase: p.Price,
		})
	}
	if len(shortages) > 0 {
		return CreateOrderOutput{}, &StockError{Shortages: shortages}
	}

	order := &domain.Order{
		ID:              orderID,
		UserID:          in.UserID,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		ShippingCost:    quote.Cost,
		ShippingAddress: profile.ShippingAddress(),
		PaymentMethod:   method,
		Items:           items,
		CreatedAt:       time.Now().UTC(),
	}
	order.Total = order.ItemsTotal().Add(order.ShippingCost)

	// Offline methods decrement stock now, in the same transaction as the
	// insert. Provider-hosted checkout defers the decrement to payment
	// approval so an abandoned session does not hold stock.
	if err := uc.orders.Create(ctx, order, !method.DefersStock()); err != nil {
		var stockErr *StockError
		if errors.As(err, &stockErr) {
			return CreateOrderOutput{}, err
		}
		if errors.Is(err, ErrInsufficientStock) {
			return CreateOrderOutput{}, &StockError{}
		}
		return CreateOrderOutput{}, &PersistenceError{Op: "create order", Err: err}
	}

	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, idemScopeCheckout+":"+in.UserID, in.IdempotencyKey, orderID)
	}
	_ = uc.cache.SetStatus(ctx, orderID, string(order.Status))

	if err := uc.events.PublishOrderCreated(ctx, OrderCreatedMsg{
		OrderID:       orderID,
		UserID:        in.UserID,
		Total:         order.Total.StringFixed(2),
		PaymentMethod: string(method),
		CreatedAt:     order.CreatedAt,
	}); err != nil {
		logging.FromCtx(ctx).Warn("order.created publish failed", "order_id", orderID, "err", err)
	}

	return CreateOrderOutput{
		OrderID:       orderID,
		Total:         order.Total,
		ShippingCost:  order.ShippingCost,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}
