package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// MemoryStore is an in-process catalog used for development, the CLI and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]pricing.PriceListItemView
	modifiers map[string]pricing.ModifierDefinition
	discounts map[string]Discount
}

// NewMemoryStore constructs a store holding the provided rows.
func NewMemoryStore(items []pricing.PriceListItemView, modifiers []pricing.ModifierDefinition, discounts []Discount) *MemoryStore {
	s := &MemoryStore{
		items:     make(map[uuid.UUID]pricing.PriceListItemView, len(items)),
		modifiers: make(map[string]pricing.ModifierDefinition, len(modifiers)),
		discounts: make(map[string]Discount, len(discounts)),
	}
	for _, it := range items {
		s.items[it.ID] = it
	}
	for _, m := range modifiers {
		s.modifiers[m.Code] = m
	}
	for _, d := range discounts {
		s.discounts[d.Code] = d
	}
	return s
}

// NewDefaultMemoryStore returns a store preloaded with the built-in price list.
func NewDefaultMemoryStore() *MemoryStore {
	return NewMemoryStore(DefaultPriceItems(), DefaultModifiers(), DefaultDiscounts())
}

// GetByID implements pricing.PriceListLookup.
func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (pricing.PriceListItemView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return pricing.PriceListItemView{}, pricing.ErrItemNotFound
	}
	return it, nil
}

// GetByCode implements pricing.ModifierCatalog.
func (s *MemoryStore) GetByCode(_ context.Context, code string) (pricing.ModifierDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modifiers[code]
	if !ok {
		return pricing.ModifierDefinition{}, pricing.ErrModifierNotFound
	}
	return m, nil
}

// GetDiscount implements DiscountReader.
func (s *MemoryStore) GetDiscount(_ context.Context, code string) (Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.discounts[code]
	if !ok {
		return Discount{}, ErrDiscountNotFound
	}
	return d, nil
}

// ListPriceItems returns price list items ordered by category then name.
func (s *MemoryStore) ListPriceItems(_ context.Context) ([]pricing.PriceListItemView, error) {
	s.mu.RLock()
	out := make([]pricing.PriceListItemView, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ListModifiers returns all modifiers ordered by sort order then code.
func (s *MemoryStore) ListModifiers(_ context.Context) ([]pricing.ModifierDefinition, error) {
	s.mu.RLock()
	out := make([]pricing.ModifierDefinition, 0, len(s.modifiers))
	for _, m := range s.modifiers {
		out = append(out, m)
	}
	s.mu.RUnlock()
	sortModifiers(out)
	return out, nil
}

// ListDiscounts returns all discounts ordered by sort order then code.
func (s *MemoryStore) ListDiscounts(_ context.Context) ([]Discount, error) {
	s.mu.RLock()
	out := make([]Discount, 0, len(s.discounts))
	for _, d := range s.discounts {
		out = append(out, d)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

// UpsertPriceItem implements Writer.
func (s *MemoryStore) UpsertPriceItem(_ context.Context, item pricing.PriceListItemView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

// UpsertModifier implements Writer.
func (s *MemoryStore) UpsertModifier(_ context.Context, def pricing.ModifierDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifiers[def.Code] = def
	return nil
}

// UpsertDiscount implements Writer.
func (s *MemoryStore) UpsertDiscount(_ context.Context, d Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[d.Code] = d
	return nil
}

func sortModifiers(mods []pricing.ModifierDefinition) {
	sort.Slice(mods, func(i, j int) bool {
		if mods[i].SortOrder != mods[j].SortOrder {
			return mods[i].SortOrder < mods[j].SortOrder
		}
		return mods[i].Code < mods[j].Code
	})
}
