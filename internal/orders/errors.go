package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both true absence and ownership mismatches, so a
	// caller cannot probe for the existence of someone else's order.
	ErrNotFound = errors.New("order not found")

	ErrOrderFinalized    = errors.New("order already finalized")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductsNotFound  = errors.New("one or more products not found")
	ErrConflict          = errors.New("order was modified concurrently")
	ErrAdminOnly         = errors.New("administrator role required")

	ErrInvalidCredential = errors.New("invalid credential")
	ErrUpstream          = errors.New("upstream service failure")
)

// ValidationError rejects malformed input before any external call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
