package server

import (
	"github.com/hylla/dragboard/internal/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "dragboard"

// Metrics counts drag lifecycle events and collision results. It is the
// session observer in serve mode.
type Metrics struct {
	dragEvents    *prometheus.CounterVec
	boardChanges  *prometheus.CounterVec
	collisions    *prometheus.CounterVec
	activeDragged prometheus.Gauge
}

// NewMetrics registers the collectors on registry. A nil registry uses the
// default registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)
	return &Metrics{
		dragEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "drag_events_total",
			Help:      "Drag lifecycle events by event and resulting phase.",
		}, []string{"event", "phase"}),
		boardChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "board_changes_total",
			Help:      "Drag events that changed the board.",
		}, []string{"event"}),
		collisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "collisions_total",
			Help:      "Collision detections by resolving strategy.",
		}, []string{"strategy"}),
		activeDragged: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_drags",
			Help:      "Sessions with a drag in progress.",
		}),
	}
}

func (m *Metrics) ObserveDrag(out app.Outcome) {
	if m == nil {
		return
	}
	m.dragEvents.WithLabelValues(string(out.Event), string(out.Phase)).Inc()
	if out.Changed {
		m.boardChanges.WithLabelValues(string(out.Event)).Inc()
	}
	switch out.Event {
	case app.EventStart:
		m.activeDragged.Inc()
	case app.EventEnd, app.EventCancel:
		m.activeDragged.Dec()
	}
}

func (m *Metrics) ObserveCollision(c app.Collision) {
	if m == nil {
		return
	}
	m.collisions.WithLabelValues(string(c.Strategy)).Inc()
}
