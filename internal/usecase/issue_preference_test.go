package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

func preferenceOrder() *domain.Order {
	o := &domain.Order{
		ID:            "ord-1",
		UserID:        "user-1",
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: domain.MethodMercadoPago,
		ShippingCost:  decimal.NewFromInt(1500),
		Items: []domain.OrderItem{
			{ID: "i1", ProductID: "p1", ProductName: "Remera", Size: "M", Color: "Negro", Quantity: 2, PriceAtPurchase: decimal.NewFromInt(1000)},
		},
	}
	o.Total = o.ItemsTotal().Add(o.ShippingCost)
	return o
}

func newIssuePreference(orders OrderRepo, gateway PaymentGateway) *IssuePreference {
	return NewIssuePreference(orders, &fakeProfileRepo{profile: completeProfile("user-1")}, gateway,
		"https://tienda.example.com", "ARS", "TIENDA", 48*time.Hour)
}

func TestIssuePreferenceBuildsCheckoutSession(t *testing.T) {
	orders := newFakeOrderRepo(preferenceOrder())
	gateway := &fakeGateway{preference: &PreferenceResult{
		ID:        "pref-1",
		InitPoint: "https://mp.example.com/init/pref-1",
	}}
	uc := newIssuePreference(orders, gateway)

	out, err := uc.Execute(context.Background(), IssuePreferenceInput{UserID: "user-1", OrderID: "ord-1"})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", out.PreferenceID)
	assert.Equal(t, "https://mp.example.com/init/pref-1", out.InitPoint)

	req := gateway.lastRequest
	require.NotNil(t, req)
	assert.Equal(t, "ord-1", req.ExternalReference)

	// Product line plus a synthetic shipping line.
	require.Len(t, req.Items, 2)
	assert.Equal(t, "Remera", req.Items[0].Title)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.Equal(t, "ARS", req.Items[0].Currency)
	assert.Equal(t, "shipping", req.Items[1].ID)
	assert.Equal(t, "1500", req.Items[1].UnitPrice.String())

	assert.Equal(t, "https://tienda.example.com/checkout/success/ord-1?status=approved", req.SuccessURL)
	assert.Equal(t, "https://tienda.example.com/checkout/success/ord-1?status=failure", req.FailureURL)
	assert.Equal(t, "https://tienda.example.com/checkout/success/ord-1?status=pending", req.PendingURL)
	assert.Equal(t, "https://tienda.example.com/v1/payments/webhook", req.NotificationURL)
	assert.WithinDuration(t, time.Now().UTC().Add(48*time.Hour), req.ExpiresAt, time.Minute)

	assert.Equal(t, "nahuel@example.com", req.Payer.Email)

	// Preference id persisted on the order.
	assert.Equal(t, "pref-1", orders.get("ord-1").Refs.PreferenceID)
}

func TestIssuePreferenceOmitsShippingLineWhenFree(t *testing.T) {
	order := preferenceOrder()
	order.ShippingCost = decimal.Zero
	order.Total = order.ItemsTotal()
	gateway := &fakeGateway{preference: &PreferenceResult{ID: "pref-1"}}
	uc := newIssuePreference(newFakeOrderRepo(order), gateway)

	_, err := uc.Execute(context.Background(), IssuePreferenceInput{UserID: "user-1", OrderID: "ord-1"})
	require.NoError(t, err)
	require.Len(t, gateway.lastRequest.Items, 1)
}

func TestIssuePreferenceHidesForeignOrders(t *testing.T) {
	uc := newIssuePreference(newFakeOrderRepo(preferenceOrder()), &fakeGateway{})

	_, err := uc.Execute(context.Background(), IssuePreferenceInput{UserID: "user-2", OrderID: "ord-1"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = uc.Execute(context.Background(), IssuePreferenceInput{UserID: "user-1", OrderID: "ord-nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = uc.Execute(context.Background(), IssuePreferenceInput{OrderID: "ord-1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIssuePreferenceProviderFailure(t *testing.T) {
	gateway := &fakeGateway{preferenceErr: &ProviderError{Status: 401, Message: "invalid token"}}
	uc := newIssuePreference(newFakeOrderRepo(preferenceOrder()), gateway)

	_, err := uc.Execute(context.Background(), IssuePreferenceInput{UserID: "user-1", OrderID: "ord-1"})
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 401, provErr.Status)
}

func TestIssuePreferenceSucceedsWhenPersistingIDFails(t *testing.T) {
	orders := newFakeOrderRepo(preferenceOrder())
	gateway := &fakeGateway{preference: &PreferenceResult{ID: "pref-1", InitPoint: "https://mp/init"}}
	uc := NewIssuePreference(failingPrefRepo{orders}, &fakeProfileRepo{profile: completeProfile("user-1")}, gateway,
		"https://tienda.example.com", "ARS", "TIENDA", time.Hour)

	out, err := uc.Execute(context.Background(), IssuePreferenceInput{UserID: "user-1", OrderID: "ord-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://mp/init", out.InitPoint)
}

// failingPrefRepo wraps the fake and fails only SetPreferenceID.
type failingPrefRepo struct{ *fakeOrderRepo }

func (failingPrefRepo) SetPreferenceID(context.Context, string, string) error { return errBoom }
