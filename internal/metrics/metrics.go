// Package metrics exposes prometheus counters and histograms for the
// scanner's quote, opportunity, and trade pipelines, narrowed from the
// teacher's broader trading-metrics registry down to what this system
// actually measures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the scanner registers. Construct one
// with New and pass it to the orchestrator, which updates the
// opportunity, trade, active-pair, refresh-failure and tick-overrun
// collectors; QuoteLatency, QuoteFailures and CooldownActive are
// registered but not updated by any caller.
type Metrics struct {
	QuoteLatency      *prometheus.HistogramVec
	QuoteFailures     *prometheus.CounterVec
	OpportunitiesSeen *prometheus.CounterVec
	TradesTerminal    *prometheus.CounterVec
	CooldownActive    prometheus.Gauge
	ActivePairs       prometheus.Gauge
	RefreshFailures   prometheus.Counter
	TickOverruns      prometheus.Counter
}

// New constructs and registers every collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arb_scanner",
			Name:      "quote_latency_seconds",
			Help:      "Latency of a single venue get_quote call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"venue"}),

		QuoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arb_scanner",
			Name:      "quote_failures_total",
			Help:      "Quote calls that failed or timed out, by venue.",
		}, []string{"venue"}),

		OpportunitiesSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arb_scanner",
			Name:      "opportunities_total",
			Help:      "Opportunities detected, by strategy and tier.",
		}, []string{"strategy", "tier"}),

		TradesTerminal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arb_scanner",
			Name:      "trades_terminal_total",
			Help:      "Executed trades by terminal status.",
		}, []string{"status"}),

		CooldownActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arb_scanner",
			Name:      "cooldown_active_pairs",
			Help:      "Number of pairs currently in cooldown.",
		}),

		ActivePairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arb_scanner",
			Name:      "active_pairs",
			Help:      "Number of matched pairs in the current published snapshot.",
		}),

		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arb_scanner",
			Name:      "refresh_failures_total",
			Help:      "Slow-refresh cycles that aborted after repeated failures.",
		}),

		TickOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arb_scanner",
			Name:      "tick_overruns_total",
			Help:      "Fast ticks that exceeded their period (backpressure).",
		}),
	}

	reg.MustRegister(
		m.QuoteLatency, m.QuoteFailures, m.OpportunitiesSeen, m.TradesTerminal,
		m.CooldownActive, m.ActivePairs, m.RefreshFailures, m.TickOverruns,
	)
	return m
}
