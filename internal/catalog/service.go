package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// ModifierGroups splits modifiers for selection screens.
type ModifierGroups struct {
	// General modifiers have no category restriction.
	General []pricing.ModifierDefinition `json:"general"`
	// Specific modifiers are restricted to the requested category.
	Specific []pricing.ModifierDefinition `json:"specific"`
}

// ModifierListing is the result of ListModifiers.
type ModifierListing struct {
	Modifiers []pricing.ModifierDefinition `json:"modifiers"`
	Groups    *ModifierGroups              `json:"groups,omitempty"`
}

// Service exposes read-side catalog queries used when building an order.
type Service struct {
	store    Store
	excluded []pricing.Category
}

// ServiceConfig configures the catalog Service.
type ServiceConfig struct {
	Store Store
	// Excluded overrides the default discount exclusions, matching DiscountPolicy.
	Excluded []pricing.Category
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{store: cfg.Store, excluded: cfg.Excluded}, nil
}

// ListPriceItems returns the price list, optionally filtered to one category.
func (s *Service) ListPriceItems(ctx context.Context, category *pricing.Category) ([]pricing.PriceListItemView, error) {
	items, err := s.store.ListPriceItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list price items: %w", err)
	}
	if category == nil {
		return items, nil
	}
	out := make([]pricing.PriceListItemView, 0, len(items))
	for _, it := range items {
		if it.Category == *category {
			out = append(out, it)
		}
	}
	return out, nil
}

// ListModifiers returns modifiers ordered by sort order then code. With a category the
// result holds only active modifiers usable for it, grouped into general and specific.
func (s *Service) ListModifiers(ctx context.Context, category *pricing.Category, activeOnly bool) (ModifierListing, error) {
	all, err := s.store.ListModifiers(ctx)
	if err != nil {
		return ModifierListing{}, fmt.Errorf("list modifiers: %w", err)
	}
	sortModifiers(all)

	if category == nil {
		out := make([]pricing.ModifierDefinition, 0, len(all))
		for _, m := range all {
			if activeOnly && !m.Active {
				continue
			}
			out = append(out, m)
		}
		return ModifierListing{Modifiers: out}, nil
	}

	listing := ModifierListing{
		Modifiers: make([]pricing.ModifierDefinition, 0, len(all)),
		Groups: &ModifierGroups{
			General:  []pricing.ModifierDefinition{},
			Specific: []pricing.ModifierDefinition{},
		},
	}
	for _, m := range all {
		if !m.Active || !m.AppliesTo(*category) {
			continue
		}
		listing.Modifiers = append(listing.Modifiers, m)
		if len(m.CategoryRestrictions) == 0 {
			listing.Groups.General = append(listing.Groups.General, m)
		} else {
			listing.Groups.Specific = append(listing.Groups.Specific, m)
		}
	}
	return listing, nil
}

// ApplicableModifierCodes returns the codes of active modifiers usable for category.
func (s *Service) ApplicableModifierCodes(ctx context.Context, category pricing.Category) ([]string, error) {
	listing, err := s.ListModifiers(ctx, &category, true)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(listing.Modifiers))
	for _, m := range listing.Modifiers {
		codes = append(codes, m.Code)
	}
	return codes, nil
}

// ListDiscounts returns discount programs ordered by sort order then code.
func (s *Service) ListDiscounts(ctx context.Context, activeOnly bool) ([]Discount, error) {
	all, err := s.store.ListDiscounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	out := make([]Discount, 0, len(all))
	for _, d := range all {
		if activeOnly && !d.Active {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// IsDiscountApplicableToCategory reports whether items of category receive the discount.
// Unknown codes report false.
func (s *Service) IsDiscountApplicableToCategory(ctx context.Context, code string, category pricing.Category) (bool, error) {
	d, err := s.store.GetDiscount(ctx, code)
	if err != nil {
		if errors.Is(err, ErrDiscountNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get discount: %w", err)
	}
	excluded := d.ExcludedCategories
	if excluded == nil {
		excluded = s.excluded
	}
	return pricing.DiscountSelection{ExcludedCategories: excluded}.Eligible(category), nil
}
