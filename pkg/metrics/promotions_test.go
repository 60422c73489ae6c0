package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPromotionMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPromotionMetrics(reg)

	metrics.IncValidation("ok")
	metrics.IncValidation("conflict")
	metrics.AddConflicts(3)
	metrics.ObserveQuoteDuration(120 * time.Millisecond)
	metrics.IncDiscountApplied("COMBO")
	metrics.IncCacheLookup("hit")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "promotion_validations_total", "outcome", "conflict"); err != nil {
		t.Fatalf("fetch validations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected validations=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_discounts_applied_total", "scope", "COMBO"); err != nil {
		t.Fatalf("fetch discounts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected discounts=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "promotion_conflicts_total")
	if mf == nil {
		t.Fatal("promotion_conflicts_total not found")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected conflicts=3, got %f", got)
	}

	hist := findMetricFamily(mfs, "cart_quote_duration_seconds")
	if hist == nil {
		t.Fatal("cart_quote_duration_seconds not found")
	}
	if sum := hist.GetMetric()[0].GetHistogram().GetSampleSum(); sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}
}

func TestPromotionMetricsNilSafe(t *testing.T) {
	var metrics *PromotionMetrics
	metrics.IncValidation("ok")
	metrics.AddConflicts(1)
	metrics.ObserveQuoteDuration(time.Second)
	metrics.IncDiscountApplied("PRODUCT")
	metrics.IncCacheLookup("miss")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
