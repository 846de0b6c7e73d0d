package sim

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts what happens during a run. A nil *Metrics counts nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Iterations   prometheus.Counter
	Failures     prometheus.Counter
	Deaths       prometheus.Counter
	Transactions *prometheus.CounterVec
	Skipped      *prometheus.CounterVec
	NetWorth     prometheus.Histogram
}

// NewMetrics registers the run metrics in a registry of their own.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "endgame_iterations_total",
			Help: "Total simulation iterations completed",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "endgame_iteration_failures_total",
			Help: "Total simulation iterations that failed",
		}),
		Deaths: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "endgame_deaths_total",
			Help: "Total iterations ended by the survival draw",
		}),
		Transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "endgame_transactions_total",
				Help: "Total transactions executed by kind",
			},
			[]string{"kind"},
		),
		Skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "endgame_skipped_total",
				Help: "Total transactions skipped by kind",
			},
			[]string{"kind"},
		),
		NetWorth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "endgame_final_net_worth",
			Help:    "Net worth at the end of each iteration",
			Buckets: prometheus.ExponentialBuckets(10_000, 2, 12),
		}),
	}
	m.Registry.MustRegister(
		m.Iterations,
		m.Failures,
		m.Deaths,
		m.Transactions,
		m.Skipped,
		m.NetWorth,
	)
	return m
}

// WriteToTextfile writes the metrics in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) executed(kind string) {
	if m != nil {
		m.Transactions.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) skipped(kind string) {
	if m != nil {
		m.Skipped.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) iteration(h *History) {
	if m == nil {
		return
	}
	switch {
	case h.Err != nil:
		m.Failures.Inc()
		return
	case h.Died():
		m.Deaths.Inc()
	}
	m.Iterations.Inc()
	if last, ok := h.Last(); ok {
		m.NetWorth.Observe(last.NetWorth.Float())
	}
}
