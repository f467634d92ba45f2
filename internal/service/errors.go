package service

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when checkout finds no cart lines for the user.
// The placement performs no writes in that case.
var ErrEmptyCart = errors.New("cart is empty")

// InsufficientStockError is returned when a cart line's quantity exceeds the
// product's available stock. The whole placement aborts; no partial effects
// remain.
type InsufficientStockError struct {
	ProductID int64
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}
