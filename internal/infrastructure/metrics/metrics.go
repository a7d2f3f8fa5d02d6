package metrics

import "github.com/prometheus/client_golang/prometheus"

// APIMetrics tracks calls from the portal to the clinic backend.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetportal",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total requests sent to the clinic backend",
		}, []string{"operation", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vetportal",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of clinic backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// ObserveRequest records one backend call. status is the HTTP status class
// ("2xx", "4xx", ...) or "error" when no response arrived.
func (m *APIMetrics) ObserveRequest(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(seconds)
}

// WorkflowMetrics counts booking workflow outcomes.
type WorkflowMetrics struct {
	transitions    *prometheus.CounterVec
	staleResponses *prometheus.CounterVec
	activeViews    prometheus.Gauge
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetportal",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking workflow transitions by event and result",
		}, []string{"event", "result"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetportal",
			Subsystem: "booking",
			Name:      "stale_responses_total",
			Help:      "Backend responses discarded because a newer request superseded them",
		}, []string{"stage"}),
		activeViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vetportal",
			Subsystem: "booking",
			Name:      "active_views",
			Help:      "Open calendar views",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.staleResponses, m.activeViews)
	return m
}

func (m *WorkflowMetrics) ObserveTransition(event, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event, result).Inc()
}

func (m *WorkflowMetrics) ObserveStale(stage string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(stage).Inc()
}

func (m *WorkflowMetrics) SetActiveViews(n int) {
	if m == nil {
		return
	}
	m.activeViews.Set(float64(n))
}
