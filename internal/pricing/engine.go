package pricing

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Engine prices orders against read-only catalog collaborators. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	prices      PriceListLookup
	modifiers   ModifierCatalog
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency prices up to n items in parallel. Output is identical to the
// sequential run; values below 2 keep sequential pricing.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// NewEngine constructs an Engine.
func NewEngine(prices PriceListLookup, modifiers ModifierCatalog, opts ...Option) (*Engine, error) {
	if prices == nil {
		return nil, errors.New("pricing: price list lookup is required")
	}
	if modifiers == nil {
		return nil, errors.New("pricing: modifier catalog is required")
	}
	e := &Engine{prices: prices, modifiers: modifiers, concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type itemOutcome struct {
	price    CalculatedItemPrice
	warnings []string
}

// Calculate prices every item through Base → Modifiers → Urgency → Discount and aggregates
// the totals. Any fatal error aborts the whole calculation; no partial result is returned.
// Amounts are int64 minor units; a product or sum outside that range fails with
// ErrAmountOverflow instead of wrapping.
func (e *Engine) Calculate(ctx context.Context, items []CalculationItemRequest, urgency Urgency, discount DiscountSelection) (Result, error) {
	if _, err := urgency.Percentage(); err != nil {
		return Result{}, err
	}
	if err := discount.Validate(); err != nil {
		return Result{}, err
	}

	outcomes := make([]itemOutcome, len(items))
	errs := make([]error, len(items))
	if e.concurrency > 1 && len(items) > 1 {
		// items do not cancel each other so the reported error matches a sequential run
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for i := range items {
			g.Go(func() error {
				outcomes[i], errs[i] = e.priceItem(ctx, i, items[i], urgency, discount)
				return nil
			})
		}
		_ = g.Wait()
		if err := firstError(errs); err != nil {
			return Result{}, err
		}
	} else {
		for i := range items {
			var err error
			outcomes[i], err = e.priceItem(ctx, i, items[i], urgency, discount)
			if err != nil {
				return Result{}, err
			}
		}
	}

	res := Result{
		Items:    make([]CalculatedItemPrice, 0, len(items)),
		Warnings: []string{},
	}
	for _, out := range outcomes {
		res.Items = append(res.Items, out.price)
		res.Warnings = append(res.Warnings, out.warnings...)
	}
	if err := checkTotalsRange(res.Items); err != nil {
		return Result{}, err
	}
	res.Totals = Aggregate(res.Items, urgency, discount)
	return res, nil
}

func (e *Engine) priceItem(ctx context.Context, index int, req CalculationItemRequest, urgency Urgency, discount DiscountSelection) (itemOutcome, error) {
	wrap := func(err error) error {
		return &ItemError{Index: index, PriceListItemID: req.PriceListItemID, Err: err}
	}
	if req.Quantity < 1 {
		return itemOutcome{}, wrap(ErrInvalidQuantity)
	}
	if err := ctx.Err(); err != nil {
		return itemOutcome{}, err
	}
	view, err := e.prices.GetByID(ctx, req.PriceListItemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return itemOutcome{}, wrap(err)
		}
		return itemOutcome{}, wrap(fmt.Errorf("lookup price list item: %w", err))
	}

	unit, base, err := BaseAmount(view, req.Characteristics, req.Quantity)
	if err != nil {
		return itemOutcome{}, wrap(err)
	}
	mods, warnings, err := ApplyModifiers(ctx, e.modifiers, req.ModifierCodes, view.Category, base)
	if err != nil {
		return itemOutcome{}, wrap(err)
	}
	urgencyMod, afterUrgency, err := ApplyUrgency(mods.Subtotal, urgency)
	if err != nil {
		return itemOutcome{}, wrap(err)
	}
	disc, err := ApplyDiscount(afterUrgency, discount, view.Category)
	if err != nil {
		return itemOutcome{}, wrap(err)
	}

	return itemOutcome{
		price: CalculatedItemPrice{
			PriceListItemID:  view.ID,
			ItemName:         view.Name,
			Category:         view.Category,
			UnitPrice:        unit,
			Quantity:         req.Quantity,
			BaseAmount:       base,
			AppliedModifiers: mods.Applied,
			ModifiersTotal:   mods.ModifiersTotal,
			Subtotal:         mods.Subtotal,
			UrgencyModifier:  urgencyMod,
			AfterUrgency:     afterUrgency,
			DiscountEligible: disc.Eligible,
			DiscountModifier: disc.Modifier,
			FinalAmount:      disc.FinalAmount,
		},
		warnings: warnings,
	}, nil
}

// checkTotalsRange fails when any order total would overflow, so Aggregate can sum unchecked.
func checkTotalsRange(items []CalculatedItemPrice) error {
	var subtotal, urgency, discount, applicable, total Money
	var err error
	for _, it := range items {
		if subtotal, err = addMoney(subtotal, it.Subtotal); err != nil {
			return err
		}
		if it.UrgencyModifier != nil {
			if urgency, err = addMoney(urgency, it.UrgencyModifier.Amount); err != nil {
				return err
			}
		}
		if it.DiscountModifier != nil {
			if discount, err = addMoney(discount, abs(it.DiscountModifier.Amount)); err != nil {
				return err
			}
		}
		if it.DiscountEligible {
			if applicable, err = addMoney(applicable, it.AfterUrgency); err != nil {
				return err
			}
		}
		if total, err = addMoney(total, it.FinalAmount); err != nil {
			return err
		}
	}
	return nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
