package store

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBasket       = errors.New("sale has no items")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrInvalidInput      = errors.New("invalid input")
)

func invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}

// unavailable wraps driver and network failures so callers can treat the
// sale as not committed.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
