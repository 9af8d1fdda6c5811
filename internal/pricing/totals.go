package pricing

// Aggregate sums item results into order totals. No rounding happens at this level.
func Aggregate(items []CalculatedItemPrice, urgency Urgency, discount DiscountSelection) CalculationTotals {
	var t CalculationTotals
	t.UrgencyPercentage, _ = urgency.Percentage()
	t.DiscountPercentage = discount.Percentage
	for _, it := range items {
		t.ItemsSubtotal += it.Subtotal
		if it.UrgencyModifier != nil {
			t.UrgencyAmount += it.UrgencyModifier.Amount
		}
		if it.DiscountModifier != nil {
			t.DiscountAmount += abs(it.DiscountModifier.Amount)
		}
		if it.DiscountEligible {
			t.DiscountApplicableAmount += it.AfterUrgency
		}
		t.Total += it.FinalAmount
	}
	return t
}

func abs(v Money) Money {
	if v < 0 {
		return -v
	}
	return v
}
