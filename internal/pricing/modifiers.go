package pricing

import (
	"context"
	"errors"
	"fmt"
)

// Warning prefixes for skipped modifiers.
const (
	WarnModifierInactive      = "modifier inactive"
	WarnModifierNotApplicable = "modifier not applicable to category"
	WarnModifierUnsupported   = "modifier has unsupported type"
)

// ModifierResult is the outcome of applying item-level modifiers.
type ModifierResult struct {
	Applied        []AppliedModifier
	ModifiersTotal Money
	Subtotal       Money
}

// ApplyModifiers resolves each code in order and sums the resulting adjustments onto base.
// Percentages are rounded per modifier. Inactive or inapplicable modifiers are skipped with a
// warning; an unknown code aborts with ErrModifierNotFound.
func ApplyModifiers(ctx context.Context, catalog ModifierCatalog, codes []string, category Category, base Money) (ModifierResult, []string, error) {
	res := ModifierResult{Applied: make([]AppliedModifier, 0, len(codes)), Subtotal: base}
	var warnings []string
	for _, code := range codes {
		def, err := catalog.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, ErrModifierNotFound) {
				return ModifierResult{}, nil, &ModifierError{Code: code, Err: err}
			}
			return ModifierResult{}, nil, fmt.Errorf("lookup modifier %s: %w", code, err)
		}
		if !def.Active {
			warnings = append(warnings, WarnModifierInactive+": "+code)
			continue
		}
		if !def.AppliesTo(category) {
			warnings = append(warnings, WarnModifierNotApplicable+": "+code)
			continue
		}
		amount, ok, err := modifierAmount(def, base)
		if err != nil {
			return ModifierResult{}, nil, &ModifierError{Code: code, Err: err}
		}
		if !ok {
			warnings = append(warnings, WarnModifierUnsupported+": "+code)
			continue
		}
		res.Applied = append(res.Applied, AppliedModifier{
			Code:   def.Code,
			Name:   def.Name,
			Kind:   def.Kind,
			Value:  def.Value,
			Amount: amount,
		})
		if res.ModifiersTotal, err = addMoney(res.ModifiersTotal, amount); err != nil {
			return ModifierResult{}, nil, &ModifierError{Code: code, Err: err}
		}
	}
	subtotal, err := addMoney(base, res.ModifiersTotal)
	if err != nil {
		return ModifierResult{}, nil, err
	}
	res.Subtotal = subtotal
	return res, warnings, nil
}

func modifierAmount(def ModifierDefinition, base Money) (Money, bool, error) {
	switch def.Kind {
	case KindPercentage:
		amount, err := PercentOf(base, def.Value, BasisPointsScale)
		return amount, true, err
	case KindFixed:
		return def.Value, true, nil
	default:
		return 0, false, nil
	}
}
