package pricing

// DefaultDiscountCode is used for discount entries when the selection carries no code.
const DefaultDiscountCode = "DISCOUNT"

// DiscountResult is the outcome of the discount step for one item.
type DiscountResult struct {
	Eligible    bool
	Modifier    *AppliedModifier
	FinalAmount Money
}

// ApplyDiscount applies the order-wide discount to afterUrgency when the category is eligible.
// An eligible item with a positive percentage always carries the discount entry, even when its
// amount rounds to zero or afterUrgency is negative. The returned final amount is never negative.
func ApplyDiscount(afterUrgency Money, discount DiscountSelection, category Category) (DiscountResult, error) {
	res := DiscountResult{Eligible: discount.Eligible(category)}
	if !res.Eligible || discount.Percentage <= 0 {
		res.FinalAmount = clampNonNegative(afterUrgency)
		return res, nil
	}
	magnitude, err := PercentOf(afterUrgency, discount.Percentage, PercentScale)
	if err != nil {
		return DiscountResult{}, err
	}
	code := discount.Code
	if code == "" {
		code = DefaultDiscountCode
	}
	amount := -magnitude
	res.Modifier = &AppliedModifier{
		Code:   code,
		Name:   "Discount: " + code,
		Kind:   KindPercentage,
		Value:  discount.Percentage * PercentScale,
		Amount: amount,
	}
	final, err := addMoney(afterUrgency, amount)
	if err != nil {
		return DiscountResult{}, err
	}
	res.FinalAmount = clampNonNegative(final)
	return res, nil
}
