package models

import (
	"errors"
	"fmt"
)

// Domain errors shared by repositories and services. Handlers map these to
// HTTP status codes; unknown errors become 500s.
var (
	// ErrNotFound covers both "does not exist" and "belongs to another user"
	// so responses never leak whether an entity exists.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCart is returned when an order is confirmed from a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMalformedFeed is returned when a shop feed document cannot be parsed
	// or its top level is not a mapping.
	ErrMalformedFeed = errors.New("malformed feed document")

	// ErrInvalidStatusTransition is returned when an order status update does
	// not follow the linear lifecycle.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// InsufficientStockError aborts an order confirmation when a cart line
// requests more units than the shop has on hand.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// Error represents an error detail in API responses
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error envelope returned by all endpoints
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// NewErrorResponse builds an error envelope
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: Error{Code: code, Message: message}}
}
