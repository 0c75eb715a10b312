package service

import "errors"

// Errors returned by the lifecycle service.
var (
	ErrMissingTable      = errors.New("table is required")
	ErrEmptyItems        = errors.New("items are required")
	ErrMissingItemName   = errors.New("item name is required")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidPrice      = errors.New("price must be >= 0")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderPaid         = errors.New("order is already paid")
	ErrOrderNotFound     = errors.New("order not found")
)

// IsInvalidInput reports whether err is a malformed-submission error,
// as opposed to a state/transition/storage failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrMissingTable) ||
		errors.Is(err, ErrEmptyItems) ||
		errors.Is(err, ErrMissingItemName) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidStatus)
}
