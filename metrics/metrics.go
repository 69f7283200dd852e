package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the hub counters.
type Metrics struct {
	ticksRecorded      *prometheus.CounterVec
	ticksRejected      prometheus.Counter
	settlements        *prometheus.CounterVec
	settledAmount      prometheus.Counter
	reconciled         *prometheus.CounterVec
	unverifiedFailures prometheus.Counter
}

// NewMetrics registers the hub counters on reg under namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ticksRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_ticks_recorded_total", namespace),
			Help: "Ticks persisted, by reported status",
		}, []string{"status"}),
		ticksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_ticks_rejected_total", namespace),
			Help: "Ticks rejected for unknown or disabled references or invalid content",
		}),
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_settlements_total", namespace),
			Help: "Settlement attempts, by outcome",
		}, []string{"outcome"}),
		settledAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_settled_amount_total", namespace),
			Help: "Confirmed payout amount in the smallest rail unit",
		}),
		reconciled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_reconciled_intents_total", namespace),
			Help: "Live intents resolved by reconciliation, by result",
		}, []string{"result"}),
		unverifiedFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_unverified_failures_total", namespace),
			Help: "Submitted intents failed without a rail lookup; require manual review",
		}),
	}
}

// New returns metrics on a private registry, for tests and tools.
func New() *Metrics {
	return NewMetrics("hub", prometheus.NewRegistry())
}

func (m *Metrics) TickRecorded(status string) {
	m.ticksRecorded.WithLabelValues(status).Inc()
}

func (m *Metrics) TickRejected() {
	m.ticksRejected.Inc()
}

func (m *Metrics) Settlement(outcome string) {
	m.settlements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Settled(amount uint64) {
	m.settledAmount.Add(float64(amount))
}

func (m *Metrics) Reconciled(result string) {
	m.reconciled.WithLabelValues(result).Inc()
}

func (m *Metrics) UnverifiedFailure() {
	m.unverifiedFailures.Inc()
}
