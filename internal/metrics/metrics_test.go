package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	metric := &dto.Metric{}
	if err := vec.WithLabelValues(labels...).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestHTTPMetrics_RequestLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegisterer(reg)

	m.RequestStarted()

	gauge := &dto.Metric{}
	if err := m.inFlight.Write(gauge); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gauge.Gauge.GetValue() != 1 {
		t.Fatalf("expected 1 in-flight request, got %f", gauge.Gauge.GetValue())
	}

	m.RequestFinished(http.MethodGet, "/products/{id}", http.StatusOK, 20*time.Millisecond)

	if got := counterValue(t, m.requests, http.MethodGet, "/products/{id}", "200"); got != 1 {
		t.Errorf("expected request counter 1, got %f", got)
	}

	gauge = &dto.Metric{}
	if err := m.inFlight.Write(gauge); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gauge.Gauge.GetValue() != 0 {
		t.Errorf("expected 0 in-flight requests, got %f", gauge.Gauge.GetValue())
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() == "shop_http_request_duration_seconds" {
			found = true
			if count := family.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
				t.Errorf("expected 1 duration sample, got %d", count)
			}
		}
	}
	if !found {
		t.Error("duration histogram was not registered")
	}
}

func TestHTTPMetrics_UnmatchedRoute(t *testing.T) {
	m := NewHTTPMetricsWithRegisterer(prometheus.NewRegistry())

	m.RequestStarted()
	m.RequestFinished(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	if got := counterValue(t, m.requests, http.MethodGet, "unmatched", "404"); got != 1 {
		t.Errorf("expected unmatched counter 1, got %f", got)
	}
}

func TestCatalogMetrics_Counters(t *testing.T) {
	m := NewCatalogMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordMutation("product", "create")
	m.RecordMutation("product", "create")
	m.RecordDenied("product", "is_vendor")
	m.RecordEvent(ResultOK)
	m.RecordEvent(ResultError)
	m.RecordCacheLookup(ResultHit)

	if got := counterValue(t, m.mutations, "product", "create"); got != 2 {
		t.Errorf("expected 2 mutations, got %f", got)
	}
	if got := counterValue(t, m.denials, "product", "is_vendor"); got != 1 {
		t.Errorf("expected 1 denial, got %f", got)
	}
	if got := counterValue(t, m.events, ResultError); got != 1 {
		t.Errorf("expected 1 failed event, got %f", got)
	}
	if got := counterValue(t, m.cacheLookups, ResultHit); got != 1 {
		t.Errorf("expected 1 cache hit, got %f", got)
	}
}

func TestCatalogMetrics_NilSafe(_ *testing.T) {
	var m *CatalogMetrics

	// Не должно паниковать
	m.RecordMutation("product", "delete")
	m.RecordDenied("product", "rule")
	m.RecordEvent(ResultOK)
	m.RecordCacheLookup(ResultMiss)
}

func TestRegister_ReusesExistingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewCatalogMetricsWithRegisterer(reg)
	second := NewCatalogMetricsWithRegisterer(reg)

	if first.mutations != second.mutations {
		t.Fatal("second registration should reuse the existing collector")
	}
}

func TestRegister_PanicsOnTypeMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	registerGauge(reg, prometheus.GaugeOpts{Name: "shop_conflicting_metric", Help: "gauge"})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for mismatched collector type")
		}
	}()

	registerCounterVec(reg, prometheus.CounterOpts{Name: "shop_conflicting_metric", Help: "gauge"}, []string{"a"})
}
