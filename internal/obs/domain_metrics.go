package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingCalculationsTotal counts calculation requests by outcome.
	PricingCalculationsTotal *prometheus.CounterVec
	// PricingCalculationItems records the number of lines per priced order.
	PricingCalculationItems prometheus.Histogram
	// PricingWarningsTotal counts skipped modifiers by reason.
	PricingWarningsTotal *prometheus.CounterVec
	// CatalogCacheTotal counts catalog cache lookups by entity kind and result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_calculations_total",
			Help:      "Count of pricing calculations by outcome.",
		}, []string{"result"})
		PricingCalculationItems = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_calculation_items",
			Help:      "Number of items per pricing calculation.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		})
		PricingWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_warnings_total",
			Help:      "Count of modifiers skipped during pricing by reason.",
		}, []string{"reason"})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_catalog_cache_total",
			Help:      "Catalog cache lookups by kind and result.",
		}, []string{"kind", "result"})

		mustRegisterCollector(reg, PricingCalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingCalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, PricingCalculationItems, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				PricingCalculationItems = v
			}
		})
		mustRegisterCollector(reg, PricingWarningsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingWarningsTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheTotal = v
			}
		})
	})
}

// ObserveCatalogCache records a catalog cache lookup when metrics are registered.
func ObserveCatalogCache(kind, result string) {
	if CatalogCacheTotal != nil {
		CatalogCacheTotal.WithLabelValues(kind, result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
