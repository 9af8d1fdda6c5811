package pricing

// ApplyUrgency adds the order-wide urgency surcharge to subtotal.
func ApplyUrgency(subtotal Money, urgency Urgency) (*AppliedModifier, Money, error) {
	pct, err := urgency.Percentage()
	if err != nil {
		return nil, 0, err
	}
	if pct == 0 {
		return nil, subtotal, nil
	}
	amount, err := PercentOf(subtotal, pct, PercentScale)
	if err != nil {
		return nil, 0, err
	}
	afterUrgency, err := addMoney(subtotal, amount)
	if err != nil {
		return nil, 0, err
	}
	return &AppliedModifier{
		Code:   string(urgency),
		Name:   "Urgency: " + string(urgency),
		Kind:   KindPercentage,
		Value:  pct * PercentScale,
		Amount: amount,
	}, afterUrgency, nil
}
