package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.QuoteLatency.WithLabelValues("A").Observe(0.05)
	m.QuoteFailures.WithLabelValues("B").Inc()
	m.OpportunitiesSeen.WithLabelValues("A", "HIGH").Inc()
	m.TradesTerminal.WithLabelValues("filled").Inc()
	m.CooldownActive.Set(2)
	m.ActivePairs.Set(10)
	m.RefreshFailures.Inc()
	m.TickOverruns.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 8 {
		t.Errorf("expected 8 registered metric families, got %d", len(families))
	}
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic registering a second Metrics against the same registry")
		}
	}()
	New(reg)
}
