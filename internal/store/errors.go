package store

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned by the conditional stock decrement
	// when the product's remaining stock cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)
