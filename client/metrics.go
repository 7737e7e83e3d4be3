package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are optional engine counters. A nil *Metrics disables collection;
// every method tolerates a nil receiver so the engine never branches on it.
type Metrics struct {
	commands        prometheus.Counter
	failures        *prometheus.CounterVec
	batches         prometheus.Counter
	pushesBuffered  prometheus.Counter
	pushesDelivered prometheus.Counter
}

// NewMetrics registers the engine's counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		commands: f.NewCounter(prometheus.CounterOpts{
			Name: "strata_client_commands_total",
			Help: "Commands written to the server, including fire-and-forget sends.",
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_client_failures_total",
			Help: "Failed operations by failure kind.",
		}, []string{"kind"}),
		batches: f.NewCounter(prometheus.CounterOpts{
			Name: "strata_client_result_batches_total",
			Help: "Result set continuation batches fetched during row iteration.",
		}),
		pushesBuffered: f.NewCounter(prometheus.CounterOpts{
			Name: "strata_client_pushes_buffered_total",
			Help: "Push notifications queued while awaiting a command's answer.",
		}),
		pushesDelivered: f.NewCounter(prometheus.CounterOpts{
			Name: "strata_client_pushes_delivered_total",
			Help: "Push notifications handed to the caller by WaitForPush.",
		}),
	}
}

func (m *Metrics) command() {
	if m == nil {
		return
	}
	m.commands.Inc()
}

func (m *Metrics) failure(err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(errKindLabel(err)).Inc()
}

func (m *Metrics) batch() {
	if m == nil {
		return
	}
	m.batches.Inc()
}

func (m *Metrics) pushBuffered() {
	if m == nil {
		return
	}
	m.pushesBuffered.Inc()
}

func (m *Metrics) pushDelivered() {
	if m == nil {
		return
	}
	m.pushesDelivered.Inc()
}
