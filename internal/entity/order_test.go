package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	for _, s := range []string{"bank_transfer", "cash", "mercadopago"} {
		m, err := ParsePaymentMethod(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(m))
	}

	_, err := ParsePaymentMethod("credit_card")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	_, err = ParsePaymentMethod("")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestDefersStock(t *testing.T) {
	assert.True(t, MethodMercadoPago.DefersStock())
	assert.False(t, MethodCash.DefersStock())
	assert.False(t, MethodBankTransfer.DefersStock())
}

func TestOrderTotalReconciliation(t *testing.T) {
	o := &Order{
		ShippingCost: decimal.NewFromInt(250),
		Items: []OrderItem{
			{Quantity: 2, PriceAtPurchase: decimal.NewFromInt(1000)},
			{Quantity: 1, PriceAtPurchase: decimal.RequireFromString("499.50")},
		},
	}
	o.Total = o.ItemsTotal().Add(o.ShippingCost)

	require.NoError(t, o.Validate())
	assert.Equal(t, "2749.50", o.Total.StringFixed(2))

	o.Total = o.Total.Add(decimal.NewFromInt(1))
	assert.Error(t, o.Validate())
}

func TestOrderValidateRejectsEmptyAndBadQuantity(t *testing.T) {
	o := &Order{}
	assert.Error(t, o.Validate())

	o.Items = []OrderItem{{Quantity: 0, PriceAtPurchase: decimal.NewFromInt(10)}}
	assert.ErrorIs(t, o.Validate(), ErrInvalidQuantity)
}

func TestCanShipTransition(t *testing.T) {
	paid := &Order{Status: StatusConfirmed, PaymentStatus: PaymentPaid}
	assert.True(t, paid.CanShipTransition(StatusShipped))
	assert.False(t, paid.CanShipTransition(StatusDelivered))

	unpaid := &Order{Status: StatusConfirmed, PaymentStatus: PaymentPending}
	assert.False(t, unpaid.CanShipTransition(StatusShipped))

	shipped := &Order{Status: StatusShipped, PaymentStatus: PaymentPaid}
	assert.True(t, shipped.CanShipTransition(StatusDelivered))
	assert.False(t, shipped.CanShipTransition(StatusShipped))

	cancelled := &Order{Status: StatusCancelled, PaymentStatus: PaymentFailed}
	assert.False(t, cancelled.CanShipTransition(StatusShipped))
	assert.False(t, cancelled.CanShipTransition(StatusCancelled))
}

func TestShippingAddressSkipsEmptyParts(t *testing.T) {
	p := Profile{
		AddressLine1: "Av. Belgrano 1234",
		City:         "Rosario",
		Province:     "Santa Fe",
		PostalCode:   "2000",
	}
	assert.Equal(t, "Av. Belgrano 1234, Rosario, Santa Fe, 2000", p.ShippingAddress())
}

func TestHasCompleteShipping(t *testing.T) {
	p := Profile{
		Phone:        "341-5551234",
		AddressLine1: "Av. Belgrano 1234",
		City:         "Rosario",
		Province:     "Santa Fe",
		PostalCode:   "2000",
	}
	assert.True(t, p.HasCompleteShipping())

	p.Phone = ""
	assert.False(t, p.HasCompleteShipping())
}
