package catalog

import (
	"github.com/google/uuid"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// priceListNamespace derives stable ids for built-in price list items so that seeding is
// idempotent and request fixtures can refer to them.
var priceListNamespace = uuid.MustParse("6f1c2a8e-4d3b-5e7f-9a0b-1c2d3e4f5a6b")

// PriceItemID returns the stable id of a built-in price list item.
func PriceItemID(key string) uuid.UUID {
	return uuid.NewSHA1(priceListNamespace, []byte(key))
}

func money(v pricing.Money) *pricing.Money { return &v }

// DefaultPriceItems returns the built-in dry-cleaning price list (amounts in kopiykas).
func DefaultPriceItems() []pricing.PriceListItemView {
	rows := []struct {
		key      string
		name     string
		category pricing.Category
		base     pricing.Money
		black    *pricing.Money
		color    *pricing.Money
	}{
		{"coat", "Пальто", pricing.CategoryClothing, 100000, nil, nil},
		{"dress", "Сукня", pricing.CategoryClothing, 80000, nil, nil},
		{"jacket", "Піджак", pricing.CategoryClothing, 45000, nil, nil},
		{"shirt", "Сорочка", pricing.CategoryClothing, 15000, nil, nil},
		{"trousers", "Штани", pricing.CategoryClothing, 30000, nil, nil},
		{"laundry-kg", "Прання білизни (кг)", pricing.CategoryLaundry, 10000, nil, nil},
		{"ironing-shirt", "Прасування сорочки", pricing.CategoryIroning, 8000, nil, nil},
		{"leather-jacket", "Шкіряна куртка", pricing.CategoryLeather, 150000, money(170000), money(165000)},
		{"down-jacket", "Пуховик", pricing.CategoryPadding, 90000, nil, nil},
		{"fur-coat", "Шуба", pricing.CategoryFur, 250000, nil, nil},
		{"dyeing-coat", "Фарбування пальто", pricing.CategoryDyeing, 100000, money(120000), money(110000)},
		{"button-sewing", "Пришивання гудзика", pricing.CategoryAdditionalServices, 1000, nil, nil},
	}
	out := make([]pricing.PriceListItemView, 0, len(rows))
	for _, r := range rows {
		out = append(out, pricing.PriceListItemView{
			ID:         PriceItemID(r.key),
			Name:       r.name,
			Category:   r.category,
			BasePrice:  r.base,
			BlackPrice: r.black,
			ColorPrice: r.color,
		})
	}
	return out
}

// DefaultModifiers returns the built-in modifier catalog.
func DefaultModifiers() []pricing.ModifierDefinition {
	textile := []pricing.Category{pricing.CategoryClothing, pricing.CategoryLaundry, pricing.CategoryIroning, pricing.CategoryDyeing}
	leather := []pricing.Category{pricing.CategoryLeather}
	return []pricing.ModifierDefinition{
		{Code: "KIDS_ITEMS", Name: "Дитячі речі (до 30 розміру)", Kind: pricing.KindPercentage, Value: -3000, Active: true, SortOrder: 10},
		{Code: "MANUAL_CLEANING", Name: "Ручна чистка", Kind: pricing.KindPercentage, Value: 2000, Active: true, SortOrder: 20},
		{Code: "VERY_DIRTY", Name: "Дуже забруднені речі", Kind: pricing.KindPercentage, Value: 5000, Active: true, SortOrder: 30},
		{Code: "FUR_COLLARS", Name: "Хутряні коміри та манжети", Kind: pricing.KindPercentage, Value: 3000, Active: true, CategoryRestrictions: textile, SortOrder: 40},
		{Code: "WATER_REPELLENT", Name: "Водовідштовхуюче покриття", Kind: pricing.KindPercentage, Value: 3000, Active: true, CategoryRestrictions: textile, SortOrder: 50},
		{Code: "SILK_MATERIAL", Name: "Натуральний шовк, атлас, шифон", Kind: pricing.KindPercentage, Value: 5000, Active: true, CategoryRestrictions: textile, SortOrder: 60},
		{Code: "COMBINED_ITEMS", Name: "Комбіновані вироби (шкіра+текстиль)", Kind: pricing.KindPercentage, Value: 10000, Active: true, CategoryRestrictions: textile, SortOrder: 70},
		{Code: "LARGE_TOYS", Name: "Великі м'які іграшки", Kind: pricing.KindPercentage, Value: 10000, Active: true, CategoryRestrictions: textile, SortOrder: 80},
		{Code: "BUTTON_SEWING", Name: "Пришивання гудзиків", Kind: pricing.KindFixed, Value: 1000, Active: true, CategoryRestrictions: textile, SortOrder: 90},
		{Code: "BLACK_LIGHT_COLORS", Name: "Вироби чорного та світлих тонів", Kind: pricing.KindPercentage, Value: 2000, Active: true, CategoryRestrictions: textile, SortOrder: 100},
		{Code: "WEDDING_DRESS", Name: "Весільна сукня зі шлейфом", Kind: pricing.KindPercentage, Value: 3000, Active: true, CategoryRestrictions: textile, SortOrder: 110},
		{Code: "LEATHER_IRONING", Name: "Прасування шкіряних виробів", Kind: pricing.KindPercentage, Value: 7000, Active: true, CategoryRestrictions: leather, SortOrder: 120},
		{Code: "LEATHER_WATER_REPELLENT", Name: "Водовідштовхуюче покриття (шкіра)", Kind: pricing.KindPercentage, Value: 3000, Active: true, CategoryRestrictions: leather, SortOrder: 130},
		{Code: "PEARL_COATING", Name: "Перламутрове покриття", Kind: pricing.KindPercentage, Value: 3000, Active: true, CategoryRestrictions: leather, SortOrder: 140},
		{Code: "URGENT_CLEANING", Name: "Термінова чистка (застаріле)", Kind: pricing.KindPercentage, Value: 5000, Active: false, SortOrder: 900},
	}
}

// DefaultDiscounts returns the built-in discount programs.
func DefaultDiscounts() []Discount {
	return []Discount{
		{Code: string(pricing.DiscountNone), Name: "Без знижки", Percentage: 0, Active: true, SortOrder: 0},
		{Code: string(pricing.DiscountEvercard), Name: "Еверкард", Percentage: 10, Active: true, SortOrder: 10},
		{Code: string(pricing.DiscountSocialMedia), Name: "Соцмережі", Percentage: 5, Active: true, SortOrder: 20},
		{Code: string(pricing.DiscountMilitary), Name: "ЗСУ", Percentage: 10, Active: true, SortOrder: 30},
		{Code: string(pricing.DiscountOther), Name: "Інше", Percentage: 0, Active: true, SortOrder: 40},
	}
}
