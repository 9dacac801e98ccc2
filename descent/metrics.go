package descent

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes an engine's progress as Prometheus collectors.
type Metrics struct {
	steps     prometheus.Counter
	resets    prometheus.Counter
	loss      prometheus.Gauge
	iteration prometheus.Gauge
	state     *prometheus.GaugeVec
}

// NewMetrics creates the collectors for the engine called name and registers
// them on reg.
func NewMetrics(reg prometheus.Registerer, name string) (*Metrics, error) {
	labels := prometheus.Labels{"engine": name}
	m := &Metrics{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "gradviz",
			Subsystem:   "descent",
			Name:        "steps_total",
			Help:        "Gradient descent steps applied.",
			ConstLabels: labels,
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "gradviz",
			Subsystem:   "descent",
			Name:        "resets_total",
			Help:        "Times the engine was reset to its initial snapshot.",
			ConstLabels: labels,
		}),
		loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gradviz",
			Subsystem:   "descent",
			Name:        "loss",
			Help:        "Mean squared error at the current parameters.",
			ConstLabels: labels,
		}),
		iteration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gradviz",
			Subsystem:   "descent",
			Name:        "iteration",
			Help:        "Current iteration counter.",
			ConstLabels: labels,
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "gradviz",
			Subsystem:   "descent",
			Name:        "state",
			Help:        "1 for the engine's current state, 0 otherwise.",
			ConstLabels: labels,
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{m.steps, m.resets, m.loss, m.iteration, m.state} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeStep(iteration int, loss float64) {
	if m == nil {
		return
	}
	m.steps.Inc()
	m.iteration.Set(float64(iteration))
	m.loss.Set(loss)
}

func (m *Metrics) observeReset(loss float64) {
	if m == nil {
		return
	}
	m.resets.Inc()
	m.iteration.Set(0)
	m.loss.Set(loss)
}

func (m *Metrics) observeState(s State) {
	if m == nil {
		return
	}
	for _, st := range []State{Idle, Running, Paused, Converged} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(st.String()).Set(v)
	}
}
