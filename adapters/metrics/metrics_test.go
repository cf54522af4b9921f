package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pelagos/shoal/adapters/metrics"
	"github.com/pelagos/shoal/core/alert"
	"github.com/pelagos/shoal/core/method"
)

func TestNew(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	// Verify all metrics are initialized
	if m.CallsTotal == nil {
		t.Error("CallsTotal is nil")
	}
	if m.CallDuration == nil {
		t.Error("CallDuration is nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.AlertsActive == nil {
		t.Error("AlertsActive is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	var _ method.Metrics = m

	m.ObserveCall("tunable.create", "ok", 0.002)
	m.ObserveCall("tunable.create", "invalid", 0.001)
	m.ObserveCall("tunable.query", "ok", 0.01)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	foundCalls := false
	foundDuration := false
	for _, f := range families {
		if f.GetName() == "shoal_method_calls_total" {
			foundCalls = true
			if len(f.GetMetric()) != 3 {
				t.Errorf("expected 3 metric series, got %d", len(f.GetMetric()))
			}
		}
		if f.GetName() == "shoal_method_call_duration_seconds" {
			foundDuration = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric series, got %d", len(f.GetMetric()))
			}
		}
	}
	if !foundCalls {
		t.Error("shoal_method_calls_total metric not found")
	}
	if !foundDuration {
		t.Error("shoal_method_call_duration_seconds metric not found")
	}
}

func TestRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RequestsTotal.WithLabelValues("POST", "/api/methods/{method}", "200").Inc()
	m.RequestsTotal.WithLabelValues("GET", "/api/schemas", "200").Add(5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "shoal_http_requests_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric series, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("shoal_http_requests_total metric not found")
	}
}

func TestSetActiveAlerts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	var _ alert.Metrics = m

	m.SetActiveAlerts("tunable.loader_reboot", "WARNING", 1)
	m.SetActiveAlerts("tunable.loader_reboot", "WARNING", 0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "shoal_alerts_active" {
			found = true
			val := f.GetMetric()[0].GetGauge().GetValue()
			if val != 0 {
				t.Errorf("expected value 0, got %f", val)
			}
		}
	}
	if !found {
		t.Error("shoal_alerts_active metric not found")
	}
}

func TestConfigReloads(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ConfigReloads.Inc()
	m.ConfigLastReload.SetToCurrentTime()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	foundReloads := false
	foundLastReload := false
	for _, f := range families {
		if f.GetName() == "shoal_config_reloads_total" {
			foundReloads = true
		}
		if f.GetName() == "shoal_config_last_reload_timestamp" {
			foundLastReload = true
		}
	}
	if !foundReloads {
		t.Error("shoal_config_reloads_total metric not found")
	}
	if !foundLastReload {
		t.Error("shoal_config_last_reload_timestamp metric not found")
	}
}
