package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %q not registered", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestRequestCountersRegisterAndCount(t *testing.T) {
	RequestsTotal.WithLabelValues("normalize", "success").Add(3)
	RequestsTotal.WithLabelValues("normalize", "fallback").Inc()

	mf := findMetric(t, "voicegate_requests_total")
	if mf.GetType() != dto.MetricType_COUNTER {
		t.Fatalf("type = %v, want counter", mf.GetType())
	}
	var success, fallback float64
	for _, m := range mf.GetMetric() {
		if labelValue(m, "capability") != "normalize" {
			continue
		}
		switch labelValue(m, "status") {
		case "success":
			success = m.GetCounter().GetValue()
		case "fallback":
			fallback = m.GetCounter().GetValue()
		}
	}
	if success < 3 {
		t.Errorf("success count = %v, want >= 3", success)
	}
	if fallback < 1 {
		t.Errorf("fallback count = %v, want >= 1", fallback)
	}
}

func TestDurationHistogramObserves(t *testing.T) {
	RequestDuration.WithLabelValues("stt").Observe(0.042)

	mf := findMetric(t, "voicegate_request_duration_seconds")
	if mf.GetType() != dto.MetricType_HISTOGRAM {
		t.Fatalf("type = %v, want histogram", mf.GetType())
	}
	for _, m := range mf.GetMetric() {
		if labelValue(m, "capability") == "stt" {
			if m.GetHistogram().GetSampleCount() == 0 {
				t.Error("histogram recorded no samples")
			}
			return
		}
	}
	t.Error("no stt series found")
}

func TestRejectionCounters(t *testing.T) {
	RateLimitRejections.WithLabelValues("llm").Inc()
	KillSwitchTrips.WithLabelValues("tts").Inc()
	UpstreamTimeouts.WithLabelValues("stt").Inc()
	UpstreamErrors.WithLabelValues("polish").Inc()
	OriginRejections.Inc()

	for _, name := range []string{
		"voicegate_rate_limit_rejections_total",
		"voicegate_kill_switch_trips_total",
		"voicegate_upstream_timeouts_total",
		"voicegate_upstream_errors_total",
		"voicegate_origin_rejections_total",
	} {
		mf := findMetric(t, name)
		total := 0.0
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		if total < 1 {
			t.Errorf("%s total = %v, want >= 1", name, total)
		}
	}
}
