package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

const seedLockName = "catalog-seed"

// Locker runs fn while holding a named lock.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error
}

// Invalidator drops cached catalog entries after a write.
type Invalidator interface {
	InvalidateItem(ctx context.Context, id uuid.UUID) error
	InvalidateModifier(ctx context.Context, code string) error
}

// SeedData is the catalog content written by a Seeder.
type SeedData struct {
	PriceItems []pricing.PriceListItemView
	Modifiers  []pricing.ModifierDefinition
	Discounts  []Discount
}

// DefaultSeedData returns the built-in price list, modifiers and discounts.
func DefaultSeedData() SeedData {
	return SeedData{PriceItems: DefaultPriceItems(), Modifiers: DefaultModifiers(), Discounts: DefaultDiscounts()}
}

// SeedReport counts rows upserted by a seed run.
type SeedReport struct {
	PriceItems int `json:"priceItems"`
	Modifiers  int `json:"modifiers"`
	Discounts  int `json:"discounts"`
}

// Seeder upserts catalog rows. With a Locker, concurrent seeders against the same
// database run one at a time; with an Invalidator, cached entries are dropped.
type Seeder struct {
	Writer      Writer
	Locker      Locker
	LockTTL     time.Duration
	Invalidator Invalidator
	Logger      zerolog.Logger
}

// Seed writes data. Rows are upserted so reruns are safe.
func (s Seeder) Seed(ctx context.Context, data SeedData) (SeedReport, error) {
	if s.Writer == nil {
		return SeedReport{}, errors.New("catalog: seed writer is required")
	}
	if s.Locker == nil {
		return s.seed(ctx, data)
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	var report SeedReport
	err := s.Locker.WithLock(ctx, seedLockName, ttl, func(ctx context.Context) error {
		var err error
		report, err = s.seed(ctx, data)
		return err
	})
	return report, err
}

func (s Seeder) seed(ctx context.Context, data SeedData) (SeedReport, error) {
	var report SeedReport
	for _, item := range data.PriceItems {
		if err := s.Writer.UpsertPriceItem(ctx, item); err != nil {
			return report, fmt.Errorf("seed price item %s: %w", item.Name, err)
		}
		report.PriceItems++
		s.invalidate("item", func() error { return s.Invalidator.InvalidateItem(ctx, item.ID) })
	}
	for _, def := range data.Modifiers {
		if err := s.Writer.UpsertModifier(ctx, def); err != nil {
			return report, fmt.Errorf("seed modifier %s: %w", def.Code, err)
		}
		report.Modifiers++
		s.invalidate("modifier", func() error { return s.Invalidator.InvalidateModifier(ctx, def.Code) })
	}
	for _, d := range data.Discounts {
		if err := s.Writer.UpsertDiscount(ctx, d); err != nil {
			return report, fmt.Errorf("seed discount %s: %w", d.Code, err)
		}
		report.Discounts++
	}
	s.Logger.Info().
		Int("price_items", report.PriceItems).
		Int("modifiers", report.Modifiers).
		Int("discounts", report.Discounts).
		Msg("catalog_seeded")
	return report, nil
}

func (s Seeder) invalidate(kind string, fn func() error) {
	if s.Invalidator == nil {
		return
	}
	if err := fn(); err != nil {
		s.Logger.Warn().Err(err).Str("kind", kind).Msg("catalog cache invalidation failed")
	}
}
