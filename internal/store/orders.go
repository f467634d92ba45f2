package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
)

// CartLinesTx reads the user's cart joined with current product snapshots
// inside the checkout transaction.
func (s *Store) CartLinesTx(ctx context.Context, tx *sqlx.Tx, userID int64) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := tx.SelectContext(ctx, &lines, `
		SELECT
			c.product_id,
			c.quantity,
			p.name,
			p.price,
			p.stock_quantity
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1 AND p.status = 'active'
		ORDER BY c.created_at`, userID)
	return lines, err
}

// DecrementStockTx atomically decrements a product's stock, guarded by a
// minimum-stock predicate so two concurrent checkouts can never jointly
// oversell. Returns the remaining stock, or ErrInsufficientStock when the
// predicate rejects the decrement.
func (s *Store) DecrementStockTx(ctx context.Context, tx *sqlx.Tx, productID int64, quantity int) (int, error) {
	var remaining int
	err := tx.GetContext(ctx, &remaining, `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
		RETURNING stock_quantity`, quantity, productID)
	if err == sql.ErrNoRows {
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock for product %d: %w", productID, err)
	}
	return remaining, nil
}

// InsertOrderTx inserts the order row and fills in its generated fields
func (s *Store) InsertOrderTx(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	return tx.GetContext(ctx, order, `
		INSERT INTO orders (user_id, total_amount, status, payment_status, shipping_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, total_amount, status, payment_status, shipping_address, created_at, updated_at`,
		order.UserID, order.TotalAmount, order.Status, order.PaymentStatus, order.ShippingAddress)
}

// InsertOrderItemTx inserts one order line with its price at purchase
func (s *Store) InsertOrderItemTx(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	return tx.GetContext(ctx, &item.ID, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		item.OrderID, item.ProductID, item.Quantity, item.Price)
}

// ClearCartTx removes all cart rows for the user inside the transaction
func (s *Store) ClearCartTx(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart WHERE user_id = $1", userID)
	return err
}

// GetOrderByID retrieves an order owned by the user
func (s *Store) GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND user_id = $2", orderID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves the user's orders, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all lines for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// UpdateOrderStatus updates an order's lifecycle and payment status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status, paymentStatus string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders
		SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING *`, status, paymentStatus, orderID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
