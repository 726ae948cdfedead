package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewTrackerMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTrackerMetrics(reg)

	m.ObserveProviderRequest("list_submissions", "200", 0.12)
	m.ObserveRefresh(true)
	m.ObserveRefresh(false)
	m.ObserveQualityWarning("out_of_order_timestamps")
	m.ObserveReportLatency(0.01)

	mf, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mf) == 0 {
		t.Fatal("expected registered metric families")
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *TrackerMetrics
	m.ObserveProviderRequest("x", "500", 0)
	m.ObserveRefresh(true)
	m.ObserveQualityWarning("unknown_status")
	m.ObserveReportLatency(0)
}
