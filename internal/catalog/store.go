package catalog

import (
	"context"
	"errors"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// ErrDiscountNotFound is returned when a discount code is unknown to the store.
var ErrDiscountNotFound = errors.New("discount not found")

// Discount is a discount program row.
type Discount struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Percentage int64  `json:"percentage"`
	// ExcludedCategories is nil when the default exclusions apply.
	ExcludedCategories []pricing.Category `json:"excludedCategories,omitempty"`
	Active             bool               `json:"active"`
	SortOrder          int                `json:"sortOrder"`
}

// Excludes reports whether the discount never applies to category c.
func (d Discount) Excludes(c pricing.Category) bool {
	return !pricing.DiscountSelection{ExcludedCategories: d.ExcludedCategories}.Eligible(c)
}

// DiscountReader resolves discount rows by code.
type DiscountReader interface {
	GetDiscount(ctx context.Context, code string) (Discount, error)
}

// Store is the read side of the pricing catalog.
type Store interface {
	pricing.PriceListLookup
	pricing.ModifierCatalog
	DiscountReader
	ListPriceItems(ctx context.Context) ([]pricing.PriceListItemView, error)
	ListModifiers(ctx context.Context) ([]pricing.ModifierDefinition, error)
	ListDiscounts(ctx context.Context) ([]Discount, error)
}

// Writer persists catalog rows. Used by seeding and admin tooling.
type Writer interface {
	UpsertPriceItem(ctx context.Context, item pricing.PriceListItemView) error
	UpsertModifier(ctx context.Context, def pricing.ModifierDefinition) error
	UpsertDiscount(ctx context.Context, d Discount) error
}
