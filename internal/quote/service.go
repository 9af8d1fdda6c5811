package quote

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-drycleaning/internal/obs"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// Request is a resolved calculation request.
type Request struct {
	Items    []pricing.CalculationItemRequest
	Urgency  pricing.Urgency
	Discount pricing.DiscountSelector
}

// Calculator is the engine surface used by the Service.
type Calculator interface {
	Calculate(ctx context.Context, items []pricing.CalculationItemRequest, urgency pricing.Urgency, discount pricing.DiscountSelection) (pricing.Result, error)
}

// Service resolves the discount selection and runs the pricing engine.
type Service struct {
	engine Calculator
	policy pricing.DiscountPolicy
	logger zerolog.Logger
}

// ServiceConfig configures the quote Service.
type ServiceConfig struct {
	Engine Calculator
	Policy pricing.DiscountPolicy
	Logger zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Engine == nil {
		return nil, errors.New("quote: engine is required")
	}
	if cfg.Policy == nil {
		return nil, errors.New("quote: discount policy is required")
	}
	return &Service{engine: cfg.Engine, policy: cfg.Policy, logger: cfg.Logger}, nil
}

// Calculate prices an order. The result is either complete or an error; nothing partial
// is ever returned.
func (s *Service) Calculate(ctx context.Context, req Request) (pricing.Result, error) {
	ctx, span := obs.Tracer().Start(ctx, "pricing.calculate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("pricing.items", len(req.Items)),
		attribute.String("pricing.urgency", string(req.Urgency)),
		attribute.String("pricing.discount_type", string(req.Discount.Type)),
	)

	logger := s.loggerFor(ctx)

	res, err := s.calculate(ctx, req)
	if err != nil {
		outcome := outcomeOf(err)
		observeCalculation(outcome, len(req.Items))
		span.SetAttributes(attribute.String("pricing.outcome", outcome))
		if outcome == outcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error().Err(err).Int("items", len(req.Items)).Msg("pricing_failed")
		} else {
			logger.Warn().Err(err).Str("outcome", outcome).Int("items", len(req.Items)).Msg("pricing_rejected")
		}
		return pricing.Result{}, err
	}

	observeCalculation(outcomeOK, len(req.Items))
	observeWarnings(res.Warnings)
	span.SetAttributes(
		attribute.Int64("pricing.total", res.Totals.Total),
		attribute.Int("pricing.warnings", len(res.Warnings)),
	)
	logger.Debug().
		Int("items", len(res.Items)).
		Int64("total", res.Totals.Total).
		Int64("discount", res.Totals.DiscountAmount).
		Int64("urgency", res.Totals.UrgencyAmount).
		Strs("warnings", res.Warnings).
		Msg("pricing_calculated")
	return res, nil
}

func (s *Service) calculate(ctx context.Context, req Request) (pricing.Result, error) {
	// urgency is checked before the discount lookup so an invalid request never hits the store
	if _, err := req.Urgency.Percentage(); err != nil {
		return pricing.Result{}, err
	}
	discount, err := s.policy.Resolve(ctx, req.Discount)
	if err != nil {
		return pricing.Result{}, err
	}
	return s.engine.Calculate(ctx, req.Items, req.Urgency, discount)
}

func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, pricing.ErrItemNotFound), errors.Is(err, pricing.ErrModifierNotFound):
		return outcomeNotFound
	case isClientError(err):
		return outcomeInvalid
	default:
		return outcomeError
	}
}

func observeCalculation(outcome string, items int) {
	if obs.PricingCalculationsTotal != nil {
		obs.PricingCalculationsTotal.WithLabelValues(outcome).Inc()
	}
	if outcome == outcomeOK && obs.PricingCalculationItems != nil {
		obs.PricingCalculationItems.Observe(float64(items))
	}
}

func observeWarnings(warnings []string) {
	if obs.PricingWarningsTotal == nil {
		return
	}
	for _, w := range warnings {
		reason := w
		if i := strings.Index(w, ":"); i > 0 {
			reason = w[:i]
		}
		obs.PricingWarningsTotal.WithLabelValues(reason).Inc()
	}
}
