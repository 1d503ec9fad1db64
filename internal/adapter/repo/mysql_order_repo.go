package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

// Create inserts the header, the items, and (for offline payment methods)
// the stock decrements in one transaction. Any guarded decrement that
// matches no row aborts the whole insert with ErrInsufficientStock, so no
// partial order is ever visible.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order, decrementStock bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id,user_id,status,payment_status,total,shipping_cost,shipping_address,
                    payment_method,tracking_number,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,NOW(),NOW())
`, o.ID, o.UserID, o.Status, o.PaymentStatus, o.Total, o.ShippingCost, o.ShippingAddress,
		o.PaymentMethod, o.TrackingNumber); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_items (id,order_id,product_id,product_name,size,color,quantity,price_at_purchase)
VALUES (?,?,?,?,?,?,?,?)
`, it.ID, o.ID, it.ProductID, it.ProductName, it.Size, it.Color, it.Quantity, it.PriceAtPurchase); err != nil {
			return err
		}

		if decrementStock {
			res, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
				it.Quantity, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("product %s: %w", it.ProductID, usecase.ErrInsufficientStock)
			}
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,status,payment_status,total,shipping_cost,shipping_address,payment_method,
       COALESCE(tracking_number,''),COALESCE(mercadopago_payment_id,''),
       COALESCE(mercadopago_merchant_order_id,''),COALESCE(mercadopago_preference_id,''),
       created_at,updated_at
FROM orders WHERE id=?`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,user_id,status,payment_status,total,shipping_cost,shipping_address,payment_method,
       COALESCE(tracking_number,''),COALESCE(mercadopago_payment_id,''),
       COALESCE(mercadopago_merchant_order_id,''),COALESCE(mercadopago_preference_id,''),
       created_at,updated_at
FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items, err := r.loadItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *MySQLOrderRepo) TransitionPayment(ctx context.Context, id string,
	from, to domain.PaymentStatus, status domain.Status, refs *domain.PaymentRefs) (bool, error) {

	var (
		res sql.Result
		err error
	)
	// Cancelled orders are excluded here, not just by the payment_status
	// guard: the expiry sweep cancels without touching payment_status, and a
	// late notification must not resurrect a swept order.
	if refs != nil {
		res, err = r.db.ExecContext(ctx, `
UPDATE orders
SET payment_status = ?, status = ?,
    mercadopago_payment_id = ?, mercadopago_merchant_order_id = ?,
    updated_at = NOW()
WHERE id = ? AND payment_status = ? AND status <> ?`,
			to, status, refs.PaymentID, refs.MerchantOrderID, id, from, domain.StatusCancelled)
	} else {
		res, err = r.db.ExecContext(ctx, `
UPDATE orders
SET payment_status = ?, status = ?, updated_at = NOW()
WHERE id = ? AND payment_status = ? AND status <> ?`,
			to, status, id, from, domain.StatusCancelled)
	}
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 -> nothing matched (not found, wrong payment_status, or cancelled)
	return rows > 0, nil
}

func (r *MySQLOrderRepo) SetPaymentRefs(ctx context.Context, id string, refs domain.PaymentRefs) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET mercadopago_payment_id = ?, mercadopago_merchant_order_id = ?, updated_at = NOW()
WHERE id = ?`, refs.PaymentID, refs.MerchantOrderID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *MySQLOrderRepo) SetPreferenceID(ctx context.Context, id, preferenceID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET mercadopago_preference_id = ?, updated_at = NOW() WHERE id = ?`,
		preferenceID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *MySQLOrderRepo) SetShipping(ctx context.Context, id string, status domain.Status, trackingNumber string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status = ?, tracking_number = ?, updated_at = NOW() WHERE id = ?`,
		status, trackingNumber, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *MySQLOrderRepo) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, updated_at = NOW()
WHERE payment_status = ? AND status = ? AND created_at < NOW() - INTERVAL ? SECOND`,
		domain.StatusCancelled, domain.PaymentPending, domain.StatusPending,
		int64(olderThan.Seconds()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,order_id,COALESCE(product_id,''),product_name,size,color,quantity,price_at_purchase
FROM order_items WHERE order_id=?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Size, &it.Color, &it.Quantity, &it.PriceAtPurchase); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Total,
		&o.ShippingCost, &o.ShippingAddress, &o.PaymentMethod, &o.TrackingNumber,
		&o.Refs.PaymentID, &o.Refs.MerchantOrderID, &o.Refs.PreferenceID,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

var ErrNotFound = errors.New("not found")

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
