package pricing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrItemNotFound is returned when a price list item id is unknown.
	ErrItemNotFound = errors.New("price list item not found")
	// ErrModifierNotFound is returned when an item references an unknown modifier code.
	ErrModifierNotFound = errors.New("price modifier not found")
	// ErrInvalidQuantity indicates a line quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidDiscountPercentage indicates a discount outside [0,100].
	ErrInvalidDiscountPercentage = errors.New("discount percentage must be between 0 and 100")
	// ErrInvalidUrgency indicates an unknown urgency option.
	ErrInvalidUrgency = errors.New("unknown urgency option")
	// ErrUnknownDiscountType indicates an unknown discount program.
	ErrUnknownDiscountType = errors.New("unknown discount type")
	// ErrAmountOverflow indicates an intermediate amount outside the int64 range.
	ErrAmountOverflow = errors.New("amount out of range")
)

// ItemError reports which request line failed. It unwraps to the underlying kind.
type ItemError struct {
	Index           int
	PriceListItemID uuid.UUID
	Err             error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.PriceListItemID, e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *ItemError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ModifierError carries the code of the modifier that could not be resolved.
type ModifierError struct {
	Code string
	Err  error
}

// Error implements the error interface.
func (e *ModifierError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("modifier %s: %v", e.Code, e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *ModifierError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
