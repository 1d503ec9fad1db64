package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

// MySQLProductRepo is the stock-relevant projection of the catalog: order
// processing only reads price/stock and decrements stock.
type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

func (r *MySQLProductRepo) GetPricing(ctx context.Context, productID string) (*domain.ProductPricing, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,name,price,stock FROM products WHERE id=?`, productID)

	var p domain.ProductPricing
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// DecrementStock subtracts qty only when enough stock remains; the WHERE
// guard makes "never below zero" a single atomic statement.
func (r *MySQLProductRepo) DecrementStock(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
		qty, productID, qty)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product %s: %w", productID, usecase.ErrInsufficientStock)
	}
	return nil
}

var _ usecase.ProductRepo = (*MySQLProductRepo)(nil)
