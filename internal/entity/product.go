package domain

import "github.com/shopspring/decimal"

// ProductPricing is the stock-relevant projection of a catalog product.
// The catalog itself is owned elsewhere; order processing only reads price
// and stock and decrements stock.
type ProductPricing struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// CartLine is one requested line of a checkout submission. The cart itself
// lives client-side; lines arrive with the order-creation request.
type CartLine struct {
	ProductID string
	Size      string
	Color     string
	Quantity  int
}

// Shortage describes a cart line whose requested quantity exceeds current
// stock. Advisory output of stock validation and the payload of StockError.
type Shortage struct {
	ProductID   string
	ProductName string
	Size        string
	Color       string
	Requested   int
	Available   int
}
