package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromotionMetrics records promotion validation and cart quote activity.
type PromotionMetrics struct {
	validations  *prometheus.CounterVec
	conflicts    prometheus.Counter
	quoteLatency prometheus.Histogram
	discounts    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// NewPromotionMetrics registers promotion metrics on the provided registerer.
func NewPromotionMetrics(reg prometheus.Registerer) *PromotionMetrics {
	if reg == nil {
		return &PromotionMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_validations_total",
		Help: "Uniqueness validations by outcome.",
	}, []string{"outcome"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promotion_conflicts_total",
		Help: "Conflicting promotions reported by the validator.",
	})
	quoteLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_quote_duration_seconds",
		Help:    "Duration of cart discount quotes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	discounts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_discounts_applied_total",
		Help: "Discounts applied to cart quotes by promotion scope.",
	}, []string{"scope"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_cache_lookups_total",
		Help: "Active promotion cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(validations, conflicts, quoteLatency, discounts, cacheLookups)
	return &PromotionMetrics{
		validations:  validations,
		conflicts:    conflicts,
		quoteLatency: quoteLatency,
		discounts:    discounts,
		cacheLookups: cacheLookups,
	}
}

// IncValidation increments the validation counter for the given outcome.
func (m *PromotionMetrics) IncValidation(outcome string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddConflicts records conflicting promotions found during a validation.
func (m *PromotionMetrics) AddConflicts(n int) {
	if m == nil || m.conflicts == nil || n <= 0 {
		return
	}
	m.conflicts.Add(float64(n))
}

// ObserveQuoteDuration records how long a cart quote took.
func (m *PromotionMetrics) ObserveQuoteDuration(d time.Duration) {
	if m == nil || m.quoteLatency == nil {
		return
	}
	m.quoteLatency.Observe(d.Seconds())
}

// IncDiscountApplied increments the applied-discount counter for a scope.
func (m *PromotionMetrics) IncDiscountApplied(scope string) {
	if m == nil || m.discounts == nil {
		return
	}
	m.discounts.WithLabelValues(normalizeLabel(scope)).Inc()
}

// IncCacheLookup increments the cache lookup counter with "hit" or "miss".
func (m *PromotionMetrics) IncCacheLookup(result string) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
