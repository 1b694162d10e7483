package admission

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/odtelabs/riskgate/internal/escalation"
	"github.com/odtelabs/riskgate/internal/rfib"
)

// Metrics exports admission outcomes for the ops surface. All methods are
// nil-receiver safe so the gate works without a registry in tests.
type Metrics struct {
	decisions       *prometheus.CounterVec
	utilization     prometheus.Gauge
	escalationLevel prometheus.Gauge
	lossDays        prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskgate",
			Name:      "decisions_total",
			Help:      "Admission decisions by reason code and lane",
		}, []string{"reason", "lane"}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riskgate",
			Name:      "budget_utilization",
			Help:      "Current-day risk usage as a fraction of the daily ceiling",
		}),
		escalationLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riskgate",
			Name:      "escalation_level",
			Help:      "Current escalation level (0-2)",
		}),
		lossDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riskgate",
			Name:      "consecutive_loss_days",
			Help:      "Consecutive losing days driving the budget ladder",
		}),
	}
	reg.MustRegister(m.decisions, m.utilization, m.escalationLevel, m.lossDays)
	return m
}

func (m *Metrics) ObserveDecision(d Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(string(d.Reason), d.Lane.String()).Inc()
}

func (m *Metrics) ObserveBudget(st rfib.Status) {
	if m == nil {
		return
	}
	m.utilization.Set(st.Utilization)
	m.lossDays.Set(float64(st.LossDays))
}

func (m *Metrics) ObserveLevel(l escalation.Level) {
	if m == nil {
		return
	}
	m.escalationLevel.Set(float64(l))
}
