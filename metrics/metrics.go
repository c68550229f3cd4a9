// Package metrics provides Prometheus instrumentation for simulation runs.
// Runs are batch jobs, so metrics are written to a node-exporter textfile
// instead of being served.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rustyeddy/tranche/journal"
	"github.com/rustyeddy/tranche/market"
	"github.com/rustyeddy/tranche/sim"
)

// Metrics holds the collectors for one process. Each instance has its own
// registry so tests and repeated runs don't collide.
type Metrics struct {
	reg *prometheus.Registry

	// Trials counts simulated accounts.
	Trials *prometheus.CounterVec
	// Steps counts schedule steps that advanced the threshold.
	Steps *prometheus.CounterVec
	// Sales counts steps that actually sold.
	Sales *prometheus.CounterVec
	// Survivals counts trials whose residual holdings were liquidated at the crash price.
	Survivals *prometheus.CounterVec
	// FinalMoney is the distribution of per-trial outcomes.
	FinalMoney *prometheus.HistogramVec
	// RunMean is the mean final money of the last run per experiment/label.
	RunMean *prometheus.GaugeVec
	// RunBelowStart is the fraction of outcomes below the start price.
	RunBelowStart *prometheus.GaugeVec
}

var labels = []string{"experiment", "label"}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_trials_total",
			Help: "Total number of simulated accounts",
		}, labels),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_steps_total",
			Help: "Sell schedule steps that advanced the trigger price",
		}, labels),
		Sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_sales_total",
			Help: "Sell schedule steps that sold holdings",
		}, labels),
		Survivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_survivals_total",
			Help: "Trials where residual holdings were liquidated at the crash price",
		}, labels),
		FinalMoney: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tranche_final_money",
			Help:    "Final money per simulated account in USD",
			Buckets: prometheus.ExponentialBuckets(market.StartPrice/4, 2, 12),
		}, labels),
		RunMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tranche_run_mean_money",
			Help: "Mean final money of the most recent run",
		}, labels),
		RunBelowStart: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tranche_run_below_start_ratio",
			Help: "Fraction of outcomes below the start price in the most recent run",
		}, labels),
	}

	m.reg.MustRegister(m.Trials, m.Steps, m.Sales, m.Survivals, m.FinalMoney, m.RunMean, m.RunBelowStart)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Observe records one trial.
func (m *Metrics) Observe(experiment, label string, o sim.Outcome) {
	m.Trials.WithLabelValues(experiment, label).Inc()
	m.Steps.WithLabelValues(experiment, label).Add(float64(o.Steps))
	m.Sales.WithLabelValues(experiment, label).Add(float64(o.Sales))
	if o.Survived {
		m.Survivals.WithLabelValues(experiment, label).Inc()
	}
	m.FinalMoney.WithLabelValues(experiment, label).Observe(o.FinalMoney)
}

// ObserveRun records the run-level summary.
func (m *Metrics) ObserveRun(r journal.RunRecord) {
	m.RunMean.WithLabelValues(r.Experiment, r.Label).Set(r.Mean)
	m.RunBelowStart.WithLabelValues(r.Experiment, r.Label).Set(r.BelowStart)
}

// WriteTextfile writes every metric in the text exposition format. The file
// is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
