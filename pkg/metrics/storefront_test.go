package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)

	m.ObserveRemote("POST /auth/login", "ok", 120*time.Millisecond)
	m.IncCheckout("submitting_order", "ok")
	m.IncCheckout("submitting_order", "ok")
	m.IncStorageFailure("write", "cart")
	m.IncBusPanic("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "storefront_checkout_results_total", "stage", "submitting_order"); err != nil {
		t.Fatalf("fetch checkout: %v", err)
	} else if got != 2 {
		t.Fatalf("expected checkout=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "storefront_storage_failures_total", "key", "cart"); err != nil {
		t.Fatalf("fetch storage: %v", err)
	} else if got != 1 {
		t.Fatalf("expected storage failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "storefront_bus_handler_panics_total", "topic", "unknown"); err != nil {
		t.Fatalf("fetch bus panics: %v", err)
	} else if got != 1 {
		t.Fatalf("expected normalized topic label, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "storefront_remote_request_duration_seconds", "route", "POST /auth/login"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilStorefrontIsNoop(t *testing.T) {
	var m *Storefront
	m.ObserveRemote("x", "ok", time.Second)
	m.IncCheckout("x", "ok")
	m.IncStorageFailure("read", "user")
	m.IncBusPanic("x")

	unregistered := NewStorefront(nil)
	unregistered.IncCheckout("x", "ok")
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

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
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
