package metrics

import "github.com/prometheus/client_golang/prometheus"

// TrackerMetrics exposes counters/histograms for provider calls and
// analytics runs.
type TrackerMetrics struct {
	providerTotal   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	refreshTotal    *prometheus.CounterVec
	qualityWarnings *prometheus.CounterVec
	reportLatency   prometheus.Histogram
}

func NewTrackerMetrics(reg prometheus.Registerer) *TrackerMetrics {
	m := &TrackerMetrics{
		providerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadtracker",
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total forms provider requests",
		}, []string{"op", "status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadtracker",
			Subsystem: "provider",
			Name:      "request_latency_seconds",
			Help:      "Latency of forms provider requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadtracker",
			Subsystem: "store",
			Name:      "refresh_total",
			Help:      "Total snapshot refreshes",
		}, []string{"status"}),
		qualityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadtracker",
			Subsystem: "analytics",
			Name:      "data_quality_warnings_total",
			Help:      "Records excluded from aggregates for bad data",
		}, []string{"kind"}),
		reportLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadtracker",
			Subsystem: "analytics",
			Name:      "report_latency_seconds",
			Help:      "Latency of full KPI report computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.providerTotal, m.providerLatency, m.refreshTotal, m.qualityWarnings, m.reportLatency)
	return m
}

func (m *TrackerMetrics) ObserveProviderRequest(op, status string, seconds float64) {
	if m == nil {
		return
	}
	m.providerTotal.WithLabelValues(op, status).Inc()
	m.providerLatency.WithLabelValues(op).Observe(seconds)
}

func (m *TrackerMetrics) ObserveRefresh(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.refreshTotal.WithLabelValues(status).Inc()
}

func (m *TrackerMetrics) ObserveQualityWarning(kind string) {
	if m == nil {
		return
	}
	m.qualityWarnings.WithLabelValues(kind).Inc()
}

func (m *TrackerMetrics) ObserveReportLatency(seconds float64) {
	if m == nil {
		return
	}
	m.reportLatency.Observe(seconds)
}
