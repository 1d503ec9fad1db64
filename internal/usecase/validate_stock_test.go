package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

func TestValidateStockReportsShortagesOnly(t *testing.T) {
	uc := NewValidateStock(newFakeProductRepo(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(1000), Stock: 5},
		&domain.ProductPricing{ID: "p2", Name: "Buzo", Price: decimal.NewFromInt(2000), Stock: 1},
	))

	shortages, err := uc.Execute(context.Background(), []domain.CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Size: "L", Color: "Gris", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, "p2", shortages[0].ProductID)
	assert.Equal(t, "Buzo", shortages[0].ProductName)
	assert.Equal(t, 3, shortages[0].Requested)
	assert.Equal(t, 1, shortages[0].Available)
}

func TestValidateStockAllAvailable(t *testing.T) {
	uc := NewValidateStock(newFakeProductRepo(
		&domain.ProductPricing{ID: "p1", Name: "Remera", Price: decimal.NewFromInt(1000), Stock: 5},
	))

	shortages, err := uc.Execute(context.Background(), []domain.CartLine{{ProductID: "p1", Quantity: 5}})
	require.NoError(t, err)
	assert.Empty(t, shortages)
}

func TestValidateStockUnknownProductIsAShortage(t *testing.T) {
	uc := NewValidateStock(newFakeProductRepo())

	shortages, err := uc.Execute(context.Background(), []domain.CartLine{{ProductID: "ghost", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, 0, shortages[0].Available)
}

func TestValidateStockRejectsBadInput(t *testing.T) {
	uc := NewValidateStock(newFakeProductRepo())

	var vErr *ValidationError
	_, err := uc.Execute(context.Background(), nil)
	require.ErrorAs(t, err, &vErr)

	_, err = uc.Execute(context.Background(), []domain.CartLine{{ProductID: "p1", Quantity: 0}})
	require.ErrorAs(t, err, &vErr)
}

func TestStockErrorListsEveryLine(t *testing.T) {
	err := &StockError{Shortages: []domain.Shortage{
		{ProductID: "p1", ProductName: "Remera", Size: "M", Color: "Negro", Requested: 3, Available: 1},
		{ProductID: "p2", ProductName: "Buzo", Requested: 1, Available: 0},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "Remera")
	assert.Contains(t, msg, "Buzo")
}
