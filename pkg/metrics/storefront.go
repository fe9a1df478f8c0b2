package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records remote calls, checkout outcomes and persistence failures.
// A nil *Storefront or one built without a registerer is a no-op.
type Storefront struct {
	remoteDuration  *prometheus.HistogramVec
	checkoutResults *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	busPanics       *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_remote_request_duration_seconds",
		Help:    "Duration of calls to the remote storefront API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "outcome"})
	checkoutResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_results_total",
		Help: "Checkout hand-off outcomes by stage.",
	}, []string{"stage", "result"})
	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_storage_failures_total",
		Help: "Swallowed persistence failures by operation and key.",
	}, []string{"op", "key"})
	busPanics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_bus_handler_panics_total",
		Help: "Recovered panics in event subscribers.",
	}, []string{"topic"})
	reg.MustRegister(remoteDuration, checkoutResults, storageFailures, busPanics)
	return &Storefront{
		remoteDuration:  remoteDuration,
		checkoutResults: checkoutResults,
		storageFailures: storageFailures,
		busPanics:       busPanics,
	}
}

// ObserveRemote records one remote API call.
func (s *Storefront) ObserveRemote(route, outcome string, duration time.Duration) {
	if s == nil || s.remoteDuration == nil {
		return
	}
	s.remoteDuration.WithLabelValues(normalizeLabel(route), normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCheckout counts a checkout stage result ("ok" or an error code).
func (s *Storefront) IncCheckout(stage, result string) {
	if s == nil || s.checkoutResults == nil {
		return
	}
	s.checkoutResults.WithLabelValues(normalizeLabel(stage), normalizeLabel(result)).Inc()
}

// IncStorageFailure counts a read, write or remove that failed and was swallowed.
func (s *Storefront) IncStorageFailure(op, key string) {
	if s == nil || s.storageFailures == nil {
		return
	}
	s.storageFailures.WithLabelValues(normalizeLabel(op), normalizeLabel(key)).Inc()
}

// IncBusPanic counts a subscriber panic.
func (s *Storefront) IncBusPanic(topic string) {
	if s == nil || s.busPanics == nil {
		return
	}
	s.busPanics.WithLabelValues(normalizeLabel(topic)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
