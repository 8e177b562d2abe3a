// Package apperr defines the error taxonomy shared by the cart, inventory
// and order packages. Callers branch on Kind to pick between a retry
// affordance (persistence) and a corrective message (insufficient stock,
// which carries the live available count).
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation: malformed or missing input, detected before any I/O.
	KindValidation Kind = iota + 1
	// KindNotFound: referenced product, school or stock row is absent.
	KindNotFound
	// KindInsufficientStock: requested quantity exceeds availability.
	KindInsufficientStock
	// KindPersistence: transaction failed to commit after the permitted retry.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error carries a kind plus a human-readable message. Available is only
// meaningful for KindInsufficientStock.
type Error struct {
	Kind      Kind
	Message   string
	Available int64
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(available int64) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock: %d available", available),
		Available: available,
	}
}

func Persistence(cause error, message string) *Error {
	return &Error{Kind: KindPersistence, Message: message, cause: cause}
}

// KindOf extracts the kind from an error chain; zero when the chain holds
// no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
