package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptrMoney(v Money) *Money { return &v }

func ptrString(v string) *string { return &v }

func TestUnitPriceColorResolution(t *testing.T) {
	item := PriceListItemView{BasePrice: 10000, BlackPrice: ptrMoney(12000), ColorPrice: ptrMoney(11000)}
	cases := []struct {
		name  string
		ch    *ItemCharacteristics
		price PriceListItemView
		want  Money
	}{
		{"no characteristics", nil, item, 10000},
		{"empty color", &ItemCharacteristics{Color: ptrString("  ")}, item, 10000},
		{"ukrainian black", &ItemCharacteristics{Color: ptrString("чорний")}, item, 12000},
		{"black any case", &ItemCharacteristics{Color: ptrString(" Black ")}, item, 12000},
		{"black without black price uses color price", &ItemCharacteristics{Color: ptrString("black")}, PriceListItemView{BasePrice: 10000, ColorPrice: ptrMoney(11000)}, 11000},
		{"colored", &ItemCharacteristics{Color: ptrString("red")}, item, 11000},
		{"white is neutral", &ItemCharacteristics{Color: ptrString("white")}, item, 10000},
		{"colored without color price", &ItemCharacteristics{Color: ptrString("red")}, PriceListItemView{BasePrice: 10000}, 10000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, UnitPrice(tc.price, tc.ch))
		})
	}
}

func TestBaseAmount(t *testing.T) {
	for _, qty := range []int{1, 2, 7, 1000} {
		unit, base, err := BaseAmount(PriceListItemView{BasePrice: 15000}, nil, qty)
		require.NoError(t, err)
		require.Equal(t, Money(15000), unit)
		require.Equal(t, unit*Money(qty), base)
	}
	_, _, err := BaseAmount(PriceListItemView{BasePrice: 15000}, nil, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, _, err = BaseAmount(PriceListItemView{BasePrice: math.MaxInt64 / 2}, nil, 3)
	require.ErrorIs(t, err, ErrAmountOverflow)
}

type modifierMap map[string]ModifierDefinition

func (m modifierMap) GetByCode(_ context.Context, code string) (ModifierDefinition, error) {
	def, ok := m[code]
	if !ok {
		return ModifierDefinition{}, ErrModifierNotFound
	}
	return def, nil
}

func TestApplyModifiers(t *testing.T) {
	catalog := modifierMap{
		"SILK":     {Code: "SILK", Kind: KindPercentage, Value: 5000, Active: true},
		"ODD":      {Code: "ODD", Kind: KindPercentage, Value: 1550, Active: true},
		"BUTTONS":  {Code: "BUTTONS", Kind: KindFixed, Value: 1000, Active: true},
		"KIDS":     {Code: "KIDS", Kind: KindPercentage, Value: -3000, Active: true},
		"OLD":      {Code: "OLD", Kind: KindFixed, Value: 500, Active: false},
		"LEATHERY": {Code: "LEATHERY", Kind: KindPercentage, Value: 2000, Active: true, CategoryRestrictions: []Category{CategoryLeather}},
		"FORMULA":  {Code: "FORMULA", Kind: ModifierKind("FORMULA"), Value: 1, Active: true},
	}
	ctx := context.Background()

	t.Run("no modifiers", func(t *testing.T) {
		res, warnings, err := ApplyModifiers(ctx, catalog, nil, CategoryClothing, 2000)
		require.NoError(t, err)
		require.Empty(t, res.Applied)
		require.Empty(t, warnings)
		require.Equal(t, Money(2000), res.Subtotal)
	})

	t.Run("mixed kinds in order", func(t *testing.T) {
		res, _, err := ApplyModifiers(ctx, catalog, []string{"SILK", "BUTTONS", "KIDS"}, CategoryClothing, 10000)
		require.NoError(t, err)
		require.Len(t, res.Applied, 3)
		require.Equal(t, []Money{5000, 1000, -3000}, []Money{res.Applied[0].Amount, res.Applied[1].Amount, res.Applied[2].Amount})
		require.Equal(t, Money(3000), res.ModifiersTotal)
		require.Equal(t, Money(13000), res.Subtotal)
	})

	t.Run("duplicates round independently", func(t *testing.T) {
		res, _, err := ApplyModifiers(ctx, catalog, []string{"ODD", "ODD"}, CategoryClothing, 333)
		require.NoError(t, err)
		require.Len(t, res.Applied, 2)
		require.Equal(t, Money(52), res.Applied[0].Amount)
		require.Equal(t, Money(104), res.ModifiersTotal)
	})

	t.Run("skips with warnings", func(t *testing.T) {
		res, warnings, err := ApplyModifiers(ctx, catalog, []string{"OLD", "LEATHERY", "FORMULA", "SILK"}, CategoryClothing, 1000)
		require.NoError(t, err)
		require.Len(t, res.Applied, 1)
		require.Equal(t, "SILK", res.Applied[0].Code)
		require.Equal(t, []string{
			"modifier inactive: OLD",
			"modifier not applicable to category: LEATHERY",
			"modifier has unsupported type: FORMULA",
		}, warnings)
	})

	t.Run("restricted modifier applies to its category", func(t *testing.T) {
		res, warnings, err := ApplyModifiers(ctx, catalog, []string{"LEATHERY"}, CategoryLeather, 1000)
		require.NoError(t, err)
		require.Empty(t, warnings)
		require.Equal(t, Money(200), res.ModifiersTotal)
	})

	t.Run("unknown code is fatal", func(t *testing.T) {
		_, _, err := ApplyModifiers(ctx, catalog, []string{"SILK", "NOPE"}, CategoryClothing, 1000)
		require.ErrorIs(t, err, ErrModifierNotFound)
		var modErr *ModifierError
		require.True(t, errors.As(err, &modErr))
		require.Equal(t, "NOPE", modErr.Code)
	})

	t.Run("subtotal may go negative", func(t *testing.T) {
		neg := modifierMap{"BIG": {Code: "BIG", Kind: KindFixed, Value: -1_000_000, Active: true}}
		res, _, err := ApplyModifiers(ctx, neg, []string{"BIG"}, CategoryClothing, 10000)
		require.NoError(t, err)
		require.Equal(t, Money(-990000), res.Subtotal)
	})

	t.Run("out of range amounts are fatal", func(t *testing.T) {
		huge := modifierMap{
			"TRIPLE": {Code: "TRIPLE", Kind: KindPercentage, Value: 30000, Active: true},
			"MAX":    {Code: "MAX", Kind: KindFixed, Value: math.MaxInt64, Active: true},
		}
		_, _, err := ApplyModifiers(ctx, huge, []string{"TRIPLE"}, CategoryClothing, math.MaxInt64/2)
		require.ErrorIs(t, err, ErrAmountOverflow)
		var modErr *ModifierError
		require.True(t, errors.As(err, &modErr))
		require.Equal(t, "TRIPLE", modErr.Code)

		_, _, err = ApplyModifiers(ctx, huge, []string{"MAX"}, CategoryClothing, 1)
		require.ErrorIs(t, err, ErrAmountOverflow)
	})
}

func TestApplyUrgency(t *testing.T) {
	mod, after, err := ApplyUrgency(150000, UrgencyStandard)
	require.NoError(t, err)
	require.Nil(t, mod)
	require.Equal(t, Money(150000), after)

	mod, after, err = ApplyUrgency(333, UrgencyExpress48h)
	require.NoError(t, err)
	require.NotNil(t, mod)
	require.Equal(t, "EXPRESS_48H", mod.Code)
	require.Equal(t, int64(5000), mod.Value)
	require.Equal(t, Money(167), mod.Amount)
	require.Equal(t, Money(500), after)

	mod, after, err = ApplyUrgency(150000, UrgencyExpress24h)
	require.NoError(t, err)
	require.Equal(t, Money(150000), mod.Amount)
	require.Equal(t, Money(300000), after)

	_, _, err = ApplyUrgency(1, Urgency("YESTERDAY"))
	require.ErrorIs(t, err, ErrInvalidUrgency)

	_, _, err = ApplyUrgency(math.MaxInt64/2, UrgencyExpress24h)
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestApplyDiscount(t *testing.T) {
	t.Run("eligible", func(t *testing.T) {
		res, err := ApplyDiscount(300000, DiscountSelection{Code: "EVERCARD", Percentage: 10}, CategoryClothing)
		require.NoError(t, err)
		require.True(t, res.Eligible)
		require.NotNil(t, res.Modifier)
		require.Equal(t, "EVERCARD", res.Modifier.Code)
		require.Equal(t, Money(-30000), res.Modifier.Amount)
		require.Equal(t, Money(270000), res.FinalAmount)
	})

	t.Run("excluded categories never discounted", func(t *testing.T) {
		for _, c := range []Category{CategoryLaundry, CategoryIroning, CategoryDyeing} {
			res, err := ApplyDiscount(10000, DiscountSelection{Percentage: 50}, c)
			require.NoError(t, err)
			require.False(t, res.Eligible)
			require.Nil(t, res.Modifier)
			require.Equal(t, Money(10000), res.FinalAmount)
		}
	})

	t.Run("policy override of exclusions", func(t *testing.T) {
		res, err := ApplyDiscount(10000, DiscountSelection{Percentage: 10, ExcludedCategories: []Category{}}, CategoryLaundry)
		require.NoError(t, err)
		require.True(t, res.Eligible)
		require.Equal(t, Money(9000), res.FinalAmount)
	})

	t.Run("zero percentage", func(t *testing.T) {
		res, err := ApplyDiscount(10000, DiscountSelection{}, CategoryClothing)
		require.NoError(t, err)
		require.True(t, res.Eligible)
		require.Nil(t, res.Modifier)
		require.Equal(t, Money(10000), res.FinalAmount)
	})

	t.Run("default code", func(t *testing.T) {
		res, err := ApplyDiscount(999, DiscountSelection{Percentage: 5}, CategoryClothing)
		require.NoError(t, err)
		require.Equal(t, DefaultDiscountCode, res.Modifier.Code)
		require.Equal(t, Money(-50), res.Modifier.Amount)
		require.Equal(t, Money(949), res.FinalAmount)
	})

	t.Run("negative input keeps its discount entry and is clamped", func(t *testing.T) {
		res, err := ApplyDiscount(-990000, DiscountSelection{Percentage: 10}, CategoryClothing)
		require.NoError(t, err)
		require.True(t, res.Eligible)
		require.NotNil(t, res.Modifier)
		require.Equal(t, Money(99000), res.Modifier.Amount)
		require.Equal(t, Money(0), res.FinalAmount)

		totals := Aggregate([]CalculatedItemPrice{{
			AfterUrgency:     -990000,
			DiscountEligible: true,
			DiscountModifier: res.Modifier,
			FinalAmount:      res.FinalAmount,
		}}, UrgencyStandard, DiscountSelection{Percentage: 10})
		require.Equal(t, Money(99000), totals.DiscountAmount)
		require.Equal(t, Money(0), totals.Total)
	})

	t.Run("discount rounding to zero is still recorded", func(t *testing.T) {
		res, err := ApplyDiscount(4, DiscountSelection{Code: "EVERCARD", Percentage: 10}, CategoryClothing)
		require.NoError(t, err)
		require.NotNil(t, res.Modifier)
		require.Equal(t, "EVERCARD", res.Modifier.Code)
		require.Equal(t, Money(0), res.Modifier.Amount)
		require.Equal(t, int64(1000), res.Modifier.Value)
		require.Equal(t, Money(4), res.FinalAmount)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := ApplyDiscount(math.MaxInt64/10, DiscountSelection{Percentage: 50}, CategoryClothing)
		require.ErrorIs(t, err, ErrAmountOverflow)
	})
}

func TestDiscountSelectionValidate(t *testing.T) {
	require.NoError(t, DiscountSelection{Percentage: 0}.Validate())
	require.NoError(t, DiscountSelection{Percentage: 100}.Validate())
	require.ErrorIs(t, DiscountSelection{Percentage: 101}.Validate(), ErrInvalidDiscountPercentage)
	require.ErrorIs(t, DiscountSelection{Percentage: -1}.Validate(), ErrInvalidDiscountPercentage)
}

func TestAggregate(t *testing.T) {
	items := []CalculatedItemPrice{
		{Subtotal: 1000, AfterUrgency: 1500, UrgencyModifier: &AppliedModifier{Amount: 500}, DiscountEligible: true, DiscountModifier: &AppliedModifier{Amount: -150}, FinalAmount: 1350},
		{Subtotal: 2000, AfterUrgency: 3000, UrgencyModifier: &AppliedModifier{Amount: 1000}, DiscountEligible: false, FinalAmount: 3000},
	}
	totals := Aggregate(items, UrgencyExpress48h, DiscountSelection{Percentage: 10})
	require.Equal(t, CalculationTotals{
		ItemsSubtotal:            3000,
		UrgencyAmount:            1500,
		UrgencyPercentage:        50,
		DiscountAmount:           150,
		DiscountPercentage:       10,
		DiscountApplicableAmount: 1500,
		Total:                    4350,
	}, totals)

	require.Equal(t, CalculationTotals{}, Aggregate(nil, UrgencyStandard, DiscountSelection{}))
}
