package usecase

import (
	"context"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

// ValidateStock is the advisory pre-checkout check: it compares requested
// quantities against current stock and reports shortages. It reserves
// nothing; order creation re-checks against authoritative stock anyway.
type ValidateStock struct {
	products ProductRepo
}

func NewValidateStock(products ProductRepo) *ValidateStock {
	return &ValidateStock{products: products}
}

func (uc *ValidateStock) Execute(ctx context.Context, lines []domain.CartLine) ([]domain.Shortage, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Reason: "cart is empty"}
	}

	var shortages []domain.Shortage
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &ValidationError{Reason: "quantity must be greater than zero"}
		}
		p, err := uc.products.GetPricing(ctx, line.ProductID)
		if err != nil {
			return nil, &PersistenceError{Op: "fetch product " + line.ProductID, Err: err}
		}
		if p == nil {
			shortages = append(shortages, domain.Shortage{
				ProductID: line.ProductID,
				Size:      line.Size,
				Color:     line.Color,
				Requested: line.Quantity,
				Available: 0,
			})
			continue
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
		}
	}
	return shortages, nil
}
