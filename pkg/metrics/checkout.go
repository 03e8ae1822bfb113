package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PreviewFetched   = "fetched"
	PreviewDiscarded = "discarded"

	SelectionApplied    = "applied"
	SelectionIneligible = "ineligible"
	SelectionCleared    = "cleared"

	SubmissionCreated       = "created"
	SubmissionRejected      = "rejected"
	SubmissionTopUpRequired = "topup_required"
	SubmissionFailed        = "failed"
)

// CheckoutMetrics records checkout session activity and order-service latency.
type CheckoutMetrics struct {
	previews    *prometheus.CounterVec
	selections  *prometheus.CounterVec
	stale       *prometheus.CounterVec
	submissions *prometheus.CounterVec
	upstream    *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	previews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_previews_total",
		Help: "Checkout previews fetched from the order service, by outcome.",
	}, []string{"outcome"})
	selections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_voucher_selections_total",
		Help: "Voucher selection attempts, by outcome.",
	}, []string{"outcome"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_stale_selections_total",
		Help: "Voucher selections cleared because they no longer apply.",
	}, []string{"source"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions, by outcome.",
	}, []string{"outcome"})
	upstream := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_service_request_duration_seconds",
		Help:    "Latency of order service calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(previews, selections, stale, submissions, upstream)
	return &CheckoutMetrics{
		previews:    previews,
		selections:  selections,
		stale:       stale,
		submissions: submissions,
		upstream:    upstream,
	}
}

func (c *CheckoutMetrics) IncPreview(outcome string) {
	if c == nil || c.previews == nil {
		return
	}
	c.previews.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) IncSelection(outcome string) {
	if c == nil || c.selections == nil {
		return
	}
	c.selections.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddStale counts n cleared selections for the given source operation.
func (c *CheckoutMetrics) AddStale(source string, n int) {
	if c == nil || c.stale == nil || n <= 0 {
		return
	}
	c.stale.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

func (c *CheckoutMetrics) IncSubmission(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveUpstream records the duration of an order service call.
func (c *CheckoutMetrics) ObserveUpstream(operation string, duration time.Duration) {
	if c == nil || c.upstream == nil {
		return
	}
	c.upstream.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
