package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// ErrDiscountInactive is returned when the selected discount program is switched off.
var ErrDiscountInactive = errors.New("discount is not active")

var builtinDiscountPercentages = map[pricing.DiscountType]int64{
	pricing.DiscountNone:        0,
	pricing.DiscountEvercard:    10,
	pricing.DiscountSocialMedia: 5,
	pricing.DiscountMilitary:    10,
	pricing.DiscountOther:       0,
}

// DiscountPolicy resolves operator discount selections. Rows in Discounts override the
// built-in percentages and exclusions; Excluded overrides the default exclusions for
// every program that does not define its own.
type DiscountPolicy struct {
	Discounts DiscountReader
	Excluded  []pricing.Category
}

// NewDiscountPolicy constructs a policy. Both arguments are optional.
func NewDiscountPolicy(discounts DiscountReader, excluded []pricing.Category) *DiscountPolicy {
	return &DiscountPolicy{Discounts: discounts, Excluded: excluded}
}

// Resolve implements pricing.DiscountPolicy.
func (p *DiscountPolicy) Resolve(ctx context.Context, selector pricing.DiscountSelector) (pricing.DiscountSelection, error) {
	kind := pricing.DiscountType(strings.ToUpper(strings.TrimSpace(string(selector.Type))))
	if kind == "" {
		kind = pricing.DiscountNone
	}
	pct, ok := builtinDiscountPercentages[kind]
	if !ok {
		return pricing.DiscountSelection{}, fmt.Errorf("%w: %s", pricing.ErrUnknownDiscountType, selector.Type)
	}

	sel := pricing.DiscountSelection{Code: string(kind), Percentage: pct}
	if p != nil {
		sel.ExcludedCategories = p.Excluded
	}

	if p != nil && p.Discounts != nil {
		row, err := p.Discounts.GetDiscount(ctx, string(kind))
		switch {
		case err == nil:
			if !row.Active {
				return pricing.DiscountSelection{}, fmt.Errorf("%w: %s", ErrDiscountInactive, kind)
			}
			sel.Percentage = row.Percentage
			if row.ExcludedCategories != nil {
				sel.ExcludedCategories = row.ExcludedCategories
			}
		case errors.Is(err, ErrDiscountNotFound):
		default:
			return pricing.DiscountSelection{}, fmt.Errorf("lookup discount %s: %w", kind, err)
		}
	}

	if kind == pricing.DiscountOther {
		sel.Percentage = 0
		if selector.CustomPercentage != nil {
			sel.Percentage = *selector.CustomPercentage
		}
	}
	if err := sel.Validate(); err != nil {
		return pricing.DiscountSelection{}, err
	}
	return sel, nil
}
