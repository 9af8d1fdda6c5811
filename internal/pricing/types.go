package pricing

import (
	"context"

	"github.com/google/uuid"
)

// Category is a service category code such as CLOTHING or LAUNDRY.
type Category string

const (
	CategoryClothing           Category = "CLOTHING"
	CategoryLaundry            Category = "LAUNDRY"
	CategoryIroning            Category = "IRONING"
	CategoryLeather            Category = "LEATHER"
	CategoryPadding            Category = "PADDING"
	CategoryFur                Category = "FUR"
	CategoryDyeing             Category = "DYEING"
	CategoryAdditionalServices Category = "ADDITIONAL_SERVICES"
)

// DefaultDiscountExclusions lists the categories that never receive a global discount.
func DefaultDiscountExclusions() []Category {
	return []Category{CategoryLaundry, CategoryIroning, CategoryDyeing}
}

// PriceListItemView is the price list entry the engine prices against.
type PriceListItemView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Category   Category  `json:"category"`
	BasePrice  Money     `json:"basePrice"`
	BlackPrice *Money    `json:"blackPrice,omitempty"`
	ColorPrice *Money    `json:"colorPrice,omitempty"`
}

// ItemCharacteristics describes the physical item. Only Color affects the unit price;
// material and wear level are priced through modifier codes chosen upstream.
type ItemCharacteristics struct {
	Color     *string `json:"color,omitempty"`
	Material  *string `json:"material,omitempty"`
	WearLevel *string `json:"wearLevel,omitempty"`
}

// ModifierKind tags how a modifier value is interpreted.
type ModifierKind string

const (
	// KindPercentage values are basis points of the base amount (5000 = 50%).
	KindPercentage ModifierKind = "PERCENTAGE"
	// KindFixed values are signed minor units.
	KindFixed ModifierKind = "FIXED"
)

// Valid reports whether k is a known modifier kind.
func (k ModifierKind) Valid() bool {
	switch k {
	case KindPercentage, KindFixed:
		return true
	default:
		return false
	}
}

// ModifierDefinition is a catalog entry for an item-level price modifier.
type ModifierDefinition struct {
	Code                 string       `json:"code"`
	Name                 string       `json:"name"`
	Kind                 ModifierKind `json:"kind"`
	Value                int64        `json:"value"`
	CategoryRestrictions []Category   `json:"categoryRestrictions,omitempty"`
	Active               bool         `json:"active"`
	SortOrder            int          `json:"sortOrder"`
}

// AppliesTo reports whether the modifier may be applied to items of category c.
func (m ModifierDefinition) AppliesTo(c Category) bool {
	if len(m.CategoryRestrictions) == 0 {
		return true
	}
	return containsCategory(m.CategoryRestrictions, c)
}

// Urgency selects the turnaround surcharge for the whole order.
type Urgency string

const (
	UrgencyStandard   Urgency = "STANDARD"
	UrgencyExpress48h Urgency = "EXPRESS_48H"
	UrgencyExpress24h Urgency = "EXPRESS_24H"
)

// Percentage returns the surcharge percentage for u.
func (u Urgency) Percentage() (int64, error) {
	switch u {
	case UrgencyStandard, "":
		return 0, nil
	case UrgencyExpress48h:
		return 50, nil
	case UrgencyExpress24h:
		return 100, nil
	default:
		return 0, ErrInvalidUrgency
	}
}

// DiscountSelection is a resolved order-wide discount.
type DiscountSelection struct {
	Code       string `json:"code,omitempty"`
	Percentage int64  `json:"percentage"`
	// ExcludedCategories overrides the default exclusions when non-nil.
	ExcludedCategories []Category `json:"excludedCategories,omitempty"`
}

// Excluded returns the categories that cannot receive this discount.
func (d DiscountSelection) Excluded() []Category {
	if d.ExcludedCategories == nil {
		return DefaultDiscountExclusions()
	}
	return d.ExcludedCategories
}

// Eligible reports whether items of category c receive the discount.
func (d DiscountSelection) Eligible(c Category) bool {
	return !containsCategory(d.Excluded(), c)
}

// Validate checks the percentage bounds.
func (d DiscountSelection) Validate() error {
	if d.Percentage < 0 || d.Percentage > 100 {
		return ErrInvalidDiscountPercentage
	}
	return nil
}

// DiscountType names a discount program offered at order intake.
type DiscountType string

const (
	DiscountNone        DiscountType = "NONE"
	DiscountEvercard    DiscountType = "EVERCARD"
	DiscountSocialMedia DiscountType = "SOCIAL_MEDIA"
	DiscountMilitary    DiscountType = "MILITARY"
	DiscountOther       DiscountType = "OTHER"
)

// DiscountSelector is the unresolved discount choice made by the operator.
type DiscountSelector struct {
	Type             DiscountType `json:"type"`
	CustomPercentage *int64       `json:"percentage,omitempty"`
}

// CalculationItemRequest is one order line to price.
type CalculationItemRequest struct {
	PriceListItemID uuid.UUID            `json:"priceListItemId"`
	Quantity        int                  `json:"quantity"`
	Characteristics *ItemCharacteristics `json:"characteristics,omitempty"`
	// ModifierCodes are applied in order; duplicates apply independently.
	ModifierCodes []string `json:"modifierCodes,omitempty"`
}

// AppliedModifier records one adjustment that contributed to an item price.
type AppliedModifier struct {
	Code   string       `json:"code"`
	Name   string       `json:"name,omitempty"`
	Kind   ModifierKind `json:"kind"`
	Value  int64        `json:"value"`
	Amount Money        `json:"amount"`
}

// CalculatedItemPrice keeps every intermediate value of one priced line.
type CalculatedItemPrice struct {
	PriceListItemID  uuid.UUID         `json:"priceListItemId"`
	ItemName         string            `json:"itemName,omitempty"`
	Category         Category          `json:"category"`
	UnitPrice        Money             `json:"unitPrice"`
	Quantity         int               `json:"quantity"`
	BaseAmount       Money             `json:"baseAmount"`
	AppliedModifiers []AppliedModifier `json:"appliedModifiers"`
	ModifiersTotal   Money             `json:"modifiersTotal"`
	Subtotal         Money             `json:"subtotal"`
	UrgencyModifier  *AppliedModifier  `json:"urgencyModifier,omitempty"`
	AfterUrgency     Money             `json:"afterUrgency"`
	DiscountEligible bool              `json:"discountEligible"`
	DiscountModifier *AppliedModifier  `json:"discountModifier,omitempty"`
	FinalAmount      Money             `json:"finalAmount"`
}

// CalculationTotals aggregates item results for the order.
type CalculationTotals struct {
	ItemsSubtotal            Money `json:"itemsSubtotal"`
	UrgencyAmount            Money `json:"urgencyAmount"`
	UrgencyPercentage        int64 `json:"urgencyPercentage"`
	DiscountAmount           Money `json:"discountAmount"`
	DiscountPercentage       int64 `json:"discountPercentage"`
	DiscountApplicableAmount Money `json:"discountApplicableAmount"`
	Total                    Money `json:"total"`
}

// Result is the outcome of pricing a whole order.
type Result struct {
	Items    []CalculatedItemPrice `json:"items"`
	Totals   CalculationTotals     `json:"totals"`
	Warnings []string              `json:"warnings"`
}

// PriceListLookup resolves price list entries. Implementations return an error
// matching ErrItemNotFound for unknown ids.
type PriceListLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (PriceListItemView, error)
}

// ModifierCatalog resolves modifier definitions. Implementations return an error
// matching ErrModifierNotFound for unknown codes.
type ModifierCatalog interface {
	GetByCode(ctx context.Context, code string) (ModifierDefinition, error)
}

// DiscountPolicy turns an operator selection into a concrete discount.
type DiscountPolicy interface {
	Resolve(ctx context.Context, selector DiscountSelector) (DiscountSelection, error)
}

func containsCategory(set []Category, c Category) bool {
	for _, candidate := range set {
		if candidate == c {
			return true
		}
	}
	return false
}
