package pricing

import "strings"

var (
	blackColors   = map[string]struct{}{"black": {}, "чорний": {}}
	neutralColors = map[string]struct{}{"white": {}, "білий": {}, "natural": {}, "натуральний": {}}
)

// BaseAmount picks the effective unit price for the item and multiplies it by quantity.
func BaseAmount(item PriceListItemView, ch *ItemCharacteristics, quantity int) (unit, base Money, err error) {
	if quantity < 1 {
		return 0, 0, ErrInvalidQuantity
	}
	unit = UnitPrice(item, ch)
	base, err = mulMoney(unit, Money(quantity))
	if err != nil {
		return 0, 0, err
	}
	return unit, base, nil
}

// UnitPrice resolves the black, color or base price depending on the item color.
func UnitPrice(item PriceListItemView, ch *ItemCharacteristics) Money {
	color, ok := normalizedColor(ch)
	if !ok {
		return item.BasePrice
	}
	if _, black := blackColors[color]; black && item.BlackPrice != nil {
		return *item.BlackPrice
	}
	if _, neutral := neutralColors[color]; !neutral && item.ColorPrice != nil {
		return *item.ColorPrice
	}
	return item.BasePrice
}

func normalizedColor(ch *ItemCharacteristics) (string, bool) {
	if ch == nil || ch.Color == nil {
		return "", false
	}
	color := strings.ToLower(strings.TrimSpace(*ch.Color))
	return color, color != ""
}
