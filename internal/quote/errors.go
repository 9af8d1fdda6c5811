package quote

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/common"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// Error codes returned by the calculate endpoint.
const (
	CodeItemNotFound       = "ITEM_NOT_FOUND"
	CodeModifierNotFound   = "MODIFIER_NOT_FOUND"
	CodeInvalidQuantity    = "INVALID_QUANTITY"
	CodeInvalidDiscount    = "INVALID_DISCOUNT_PERCENTAGE"
	CodeUnknownDiscount    = "UNKNOWN_DISCOUNT_TYPE"
	CodeDiscountInactive   = "DISCOUNT_INACTIVE"
	CodeInvalidUrgency     = "INVALID_URGENCY"
	CodeCalculationTimeout = "CALCULATION_TIMEOUT"
	CodeAmountOutOfRange   = "AMOUNT_OUT_OF_RANGE"
)

type errorMapping struct {
	target  error
	code    string
	message string
	status  int
}

var clientErrors = []errorMapping{
	{pricing.ErrItemNotFound, CodeItemNotFound, "price list item not found", http.StatusNotFound},
	{pricing.ErrModifierNotFound, CodeModifierNotFound, "price modifier not found", http.StatusNotFound},
	{pricing.ErrInvalidQuantity, CodeInvalidQuantity, "quantity must be at least 1", http.StatusBadRequest},
	{pricing.ErrInvalidDiscountPercentage, CodeInvalidDiscount, "discount percentage must be between 0 and 100", http.StatusBadRequest},
	{pricing.ErrUnknownDiscountType, CodeUnknownDiscount, "unknown discount type", http.StatusBadRequest},
	{pricing.ErrInvalidUrgency, CodeInvalidUrgency, "unknown urgency option", http.StatusBadRequest},
	{catalog.ErrDiscountInactive, CodeDiscountInactive, "discount is not active", http.StatusUnprocessableEntity},
	{pricing.ErrAmountOverflow, CodeAmountOutOfRange, "calculated amount is out of range", http.StatusUnprocessableEntity},
}

func isClientError(err error) bool {
	for _, m := range clientErrors {
		if errors.Is(err, m.target) {
			return true
		}
	}
	return false
}

// ToAppError converts a calculation failure into the HTTP error shape. Item and modifier
// failures carry the offending line index and identifier as details.
func ToAppError(err error) *common.AppError {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range clientErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		out := common.NewAppError(m.code, m.message, m.status, err)
		details := map[string]any{}
		var itemErr *pricing.ItemError
		if errors.As(err, &itemErr) {
			details["index"] = itemErr.Index
			details["priceListItemId"] = itemErr.PriceListItemID
		}
		var modErr *pricing.ModifierError
		if errors.As(err, &modErr) {
			details["modifierCode"] = modErr.Code
		}
		if len(details) > 0 {
			out.Details = details
		}
		return out
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewAppError(CodeCalculationTimeout, "calculation timed out", http.StatusGatewayTimeout, err)
	}
	return common.NewAppError(common.CodeInternal, "internal error", http.StatusInternalServerError, err)
}
