package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

func testShippingRates() domain.ShippingRates {
	return domain.ShippingRates{
		HomeCity:         "rosario",
		HomeProvince:     "santa fe",
		HomeProvinceCost: decimal.NewFromInt(1500),
		NationalCost:     decimal.NewFromInt(3000),
	}
}

type createOrderEnv struct {
	orders   *fakeOrderRepo
	products *fakeProductRepo
	idem     *fakeIdem
	cache    *fakeCache
	events   *fakePublisher
	uc       *CreateOrder
}

func newCreateOrderEnv(products ...*domain.ProductPricing) *createOrderEnv {
	env := &createOrderEnv{
		orders:   newFakeOrderRepo(),
		products: newFakeProductRepo(products...),
		idem:     newFakeIdem(),
		cache:    newFakeCache(),
		events:   &fakePublisher{},
	}
	env.uc = NewCreateOrder(env.orders, env.products,
		&fakeProfileRepo{profile: completeProfile("user-1")},
		env.idem, env.cache, env.events, testShippingRates())
	return env
}

func TestCreateOrderSnapshotsPricesAndTotals(t *testing.T) {
	env := newCreateOrderEnv(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(1000), Stock: 10},
		&domain.ProductPricing{ID: "p2", Name: "Buzo", Price: decimal.RequireFromString("2499.90"), Stock: 3},
	)

	out, err := env.uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "mercadopago",
		ShippingCity:     "Córdoba",
		ShippingProvince: "Córdoba",
		Lines: []domain.CartLine{
			{ProductID: "p1", Size: "M", Color: "Negro", Quantity: 2},
			{ProductID: "p2", Size: "L", Color: "Gris", Quantity: 1},
		},
	})
	require.NoError(t, err)

	// 2*1000 + 2499.90 + 3000 shipping
	assert.Equal(t, "7499.90", out.Total.StringFixed(2))
	assert.Equal(t, "3000.00", out.ShippingCost.StringFixed(2))
	assert.Equal(t, domain.StatusPending, out.Status)
	assert.Equal(t, domain.PaymentPending, out.PaymentStatus)

	stored := env.orders.get(out.OrderID)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Remera", stored.Items[0].ProductName)
	assert.Equal(t, "1000", stored.Items[0].PriceAtPurchase.String())
	require.NoError(t, stored.Validate())

	require.Len(t, env.events.created, 1)
	assert.Equal(t, out.OrderID, env.events.created[0].OrderID)

	status, ok, _ := env.cache.GetStatus(context.Background(), out.OrderID)
	assert.True(t, ok)
	assert.Equal(t, "pending", status)
}

func TestCreateOrderHomeCityShippingIsFree(t *testing.T) {
	env := newCreateOrderEnv(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(500), Stock: 5},
	)

	out, err := env.uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, out.ShippingCost.IsZero())
	assert.Equal(t, "500.00", out.Total.StringFixed(2))
}

func TestCreateOrderReportsEveryShortage(t *testing.T) {
	env := newCreateOrderEnv(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(1000), Stock: 1},
		&domain.ProductPricing{ID: "p2", Name: "Buzo", Price: decimal.NewFromInt(2000), Stock: 0},
		&domain.ProductPricing{ID: "p3", Name: "Gorra", Price: decimal.NewFromInt(800), Stock: 9},
	)

	_, err := env.uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines: []domain.CartLine{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p3", Quantity: 2},
		},
	})

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 2)
	assert.Equal(t, "p1", stockErr.Shortages[0].ProductID)
	assert.Equal(t, 3, stockErr.Shortages[0].Requested)
	assert.Equal(t, 1, stockErr.Shortages[0].Available)
	assert.Equal(t, "p2", stockErr.Shortages[1].ProductID)

	// No order persisted, nothing published.
	assert.Equal(t, 0, env.orders.createCalls)
	assert.Empty(t, env.events.created)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newCreateOrderEnv()

	_, err := env.uc.Execute(context.Background(), CreateOrderInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	base := CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	}

	var vErr *ValidationError

	in := base
	in.PaymentMethod = "paypal"
	_, err = env.uc.Execute(context.Background(), in)
	require.ErrorAs(t, err, &vErr)

	in = base
	in.Lines = nil
	_, err = env.uc.Execute(context.Background(), in)
	require.ErrorAs(t, err, &vErr)

	in = base
	in.ShippingCity = ""
	_, err = env.uc.Execute(context.Background(), in)
	require.ErrorAs(t, err, &vErr)

	in = base
	in.Lines = []domain.CartLine{{ProductID: "p1", Quantity: 0}}
	_, err = env.uc.Execute(context.Background(), in)
	require.ErrorAs(t, err, &vErr)
}

func TestCreateOrderRequiresCompleteShippingProfile(t *testing.T) {
	products := newFakeProductRepo(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(500), Stock: 5},
	)
	incomplete := completeProfile("user-1")
	incomplete.PostalCode = ""
	uc := NewCreateOrder(newFakeOrderRepo(), products,
		&fakeProfileRepo{profile: incomplete},
		newFakeIdem(), newFakeCache(), &fakePublisher{}, testShippingRates())

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "shipping")
}

func TestCreateOrderIdempotencyReplaysSameOrder(t *testing.T) {
	env := newCreateOrderEnv(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(500), Stock: 5},
	)
	in := CreateOrderInput{
		UserID:           "user-1",
		IdempotencyKey:   "retry-abc",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	}

	first, err := env.uc.Execute(context.Background(), in)
	require.NoError(t, err)

	second, err := env.uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, env.orders.createCalls)
}

func TestCreateOrderConcurrentSameKeyIsDuplicate(t *testing.T) {
	env := newCreateOrderEnv(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(500), Stock: 5},
	)
	// Lock held but no remembered result yet: the first request is still in
	// flight, a second with the same key must be rejected, not replayed.
	ok, err := env.idem.TryLock(context.Background(), "checkout:user-1", "retry-abc")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		IdempotencyKey:   "retry-abc",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 0, env.orders.createCalls)
}

func TestCreateOrderMapsGuardedDecrementFailure(t *testing.T) {
	env := newCreateOrderEnv(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(500), Stock: 5},
	)
	// The repo wraps ErrInsufficientStock when the guarded decrement inside
	// the creation transaction affects zero rows.
	env.orders.createErr = fmt.Errorf("product p1: %w", ErrInsufficientStock)

	_, err := env.uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)

	env.orders.createErr = errors.New("connection reset")
	_, err = env.uc.Execute(context.Background(), CreateOrderInput{
		UserID:           "user-1",
		PaymentMethod:    "cash",
		ShippingCity:     "Rosario",
		ShippingProvince: "Santa Fe",
		Lines:            []domain.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
}
