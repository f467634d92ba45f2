package store

import (
	"context"
	"database/sql"

	"storefront/internal/models"
)

// GetCartItems retrieves the user's cart rows joined with active products,
// newest first.
func (s *Store) GetCartItems(ctx context.Context, userID int64) ([]models.CartItemWithProduct, error) {
	items := []models.CartItemWithProduct{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT
			c.id,
			c.product_id,
			c.quantity,
			c.created_at,
			p.name AS product_name,
			p.price AS product_price,
			p.images AS product_images,
			p.stock_quantity
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1 AND p.status = 'active'
		ORDER BY c.created_at DESC`, userID)
	return items, err
}

// GetCartItem retrieves one cart row owned by the user, with current stock.
func (s *Store) GetCartItem(ctx context.Context, userID, itemID int64) (*models.CartItemWithProduct, error) {
	var item models.CartItemWithProduct
	err := s.db.GetContext(ctx, &item, `
		SELECT
			c.id,
			c.product_id,
			c.quantity,
			c.created_at,
			p.name AS product_name,
			p.price AS product_price,
			p.images AS product_images,
			p.stock_quantity
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.id = $1 AND c.user_id = $2`, itemID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartQuantity returns the quantity already in the user's cart for the
// product, zero when no row exists.
func (s *Store) GetCartQuantity(ctx context.Context, userID, productID int64) (int, error) {
	var quantity int
	err := s.db.GetContext(ctx, &quantity,
		"SELECT quantity FROM cart WHERE user_id = $1 AND product_id = $2",
		userID, productID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return quantity, err
}

// UpsertCartItem adds quantity to the user's cart row for the product,
// creating the row when none exists. Returns the resulting quantity.
func (s *Store) UpsertCartItem(ctx context.Context, userID, productID int64, quantity int) (int, error) {
	var newQuantity int
	err := s.db.GetContext(ctx, &newQuantity, `
		INSERT INTO cart (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING quantity`, userID, productID, quantity)
	return newQuantity, err
}

// UpdateCartItemQuantity sets the quantity of a cart row owned by the user
func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart SET quantity = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3",
		quantity, itemID, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCartItem removes a cart row owned by the user
func (s *Store) DeleteCartItem(ctx context.Context, userID, itemID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart removes all cart rows for the user
func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart WHERE user_id = $1", userID)
	return err
}
