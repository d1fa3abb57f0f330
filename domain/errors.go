package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidQuantity rejects a sale quantity that is zero or negative.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// ValidationError reports a malformed or missing field on input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown medicine id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("medicine %d not found", e.ID)
}

// InsufficientStockError reports a requested quantity above the units on
// hand. Available is included so callers can tell the user how much is left.
type InsufficientStockError struct {
	MedicineID int64
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for medicine %d: requested %d, available %d", e.MedicineID, e.Requested, e.Available)
}

// PersistenceError wraps a failure of the underlying store. When it comes
// out of a transaction the transaction was rolled back, never half-applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DateLayout is the ISO calendar date format used for expiry and sale dates.
const DateLayout = "2006-01-02"

// ValidateDate checks that value is a well-formed ISO calendar date.
func ValidateDate(field, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return &ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}
