package services

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the order placement pipeline. Handlers map these
// to HTTP status codes with errors.Is / errors.As; no failure ever leaves a
// partially persisted order behind.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrEmptyCart         = errors.New("cart must contain at least one item")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidProductRef = errors.New("cart item carries no resolvable product reference")
	ErrPersistence       = errors.New("order could not be persisted")
	ErrValidation        = errors.New("invalid order payload")
)

// MissingFieldError reports an absent required customer or address field.
// It is raised before any catalog lookup is attempted.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
