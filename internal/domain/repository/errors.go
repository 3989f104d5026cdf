package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrVersionConflict   = errors.New("version conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError names the product whose conditional stock update failed.
type StockError struct {
	ProductID string
}

func (e *StockError) Error() string { return "insufficient stock for product " + e.ProductID }

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
