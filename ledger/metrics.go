package ledger

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "royaltyledger"

// Metrics holds the engine's prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	sales     prometheus.Counter
	royalties prometheus.Counter
	rejects   *prometheus.CounterVec
	paused    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Help:      "Number of sales recorded",
			Name:      "sales_recorded_total",
			Namespace: metricsNamespace,
		}),
		royalties: prometheus.NewCounter(prometheus.CounterOpts{
			Help:      "Royalties distributed in satoshis",
			Name:      "royalties_distributed_total",
			Namespace: metricsNamespace,
		}),
		rejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Help:      "Rejected ledger operations",
			Name:      "rejected_operations_total",
			Namespace: metricsNamespace,
		}, []string{"op", "kind"}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Help:      "Whether the ledger is paused",
			Name:      "paused",
			Namespace: metricsNamespace,
		}),
	}
	for _, c := range []prometheus.Collector{m.sales, m.royalties, m.rejects, m.paused} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) saleRecorded(paid uint64) {
	if m == nil {
		return
	}
	m.sales.Inc()
	m.royalties.Add(float64(paid))
}

func (m *Metrics) rejected(op string, err error) {
	if m == nil {
		return
	}
	m.rejects.WithLabelValues(op, ErrorKind(err)).Inc()
}

func (m *Metrics) setPaused(paused bool) {
	if m == nil {
		return
	}
	if paused {
		m.paused.Set(1)
		return
	}
	m.paused.Set(0)
}
