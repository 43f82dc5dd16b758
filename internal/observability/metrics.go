// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	IngestsTotal    *prometheus.CounterVec
	SilverRowsTotal *prometheus.CounterVec
	IngestDuration  prometheus.Histogram

	// Training metrics
	ExperimentsLogged prometheus.Counter
	SplitsEvaluated   *prometheus.CounterVec
	TrainingDuration  *prometheus.HistogramVec

	// Backtest metrics
	BacktestsRun     prometheus.Counter
	TradesSimulated  prometheus.Counter
	BacktestDuration prometheus.Histogram

	// Registry metrics
	RegistryRebuilds prometheus.Counter
	OverridesActive  prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all metrics registered under
// the given namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "equity_intraday_lab"
	}

	return &Metrics{
		IngestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "ingests_total",
			Help:      "Total number of candle batches promoted to silver",
		}, []string{"dataset_namespace"}),
		SilverRowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "silver_rows_total",
			Help:      "Total number of silver rows written",
		}, []string{"dataset_namespace"}),
		IngestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "ingest_duration_seconds",
			Help:      "Wall-clock duration of full raw->silver promotions",
			Buckets:   prometheus.DefBuckets,
		}),
		ExperimentsLogged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "experiments_logged_total",
			Help:      "Total number of experiment records written to the registry",
		}),
		SplitsEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "splits_evaluated_total",
			Help:      "Total number of walk-forward splits scored, by model family",
		}, []string{"family"}),
		TrainingDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of training runs, by model family",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"family"}),
		BacktestsRun: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs completed",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "trades_simulated_total",
			Help:      "Total number of entry and exit trades simulated",
		}),
		BacktestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of backtest runs",
			Buckets:   prometheus.DefBuckets,
		}),
		RegistryRebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "rebuilds_total",
			Help:      "Times a corrupt version registry was reinitialised empty",
		}),
		OverridesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "overrides_active",
			Help:      "Number of active dataset overrides",
		}),
	}
}

// ObserveIngest records one completed pipeline ingest.
func (m *Metrics) ObserveIngest(namespace string, silverRows int, d time.Duration) {
	m.IngestsTotal.WithLabelValues(namespace).Inc()
	m.SilverRowsTotal.WithLabelValues(namespace).Add(float64(silverRows))
	m.IngestDuration.Observe(d.Seconds())
}

// ObserveTraining records one scored family within a training run.
func (m *Metrics) ObserveTraining(family string, splits int, d time.Duration) {
	m.SplitsEvaluated.WithLabelValues(family).Add(float64(splits))
	m.TrainingDuration.WithLabelValues(family).Observe(d.Seconds())
}

// ObserveBacktest records one completed backtest run.
func (m *Metrics) ObserveBacktest(trades int, d time.Duration) {
	m.BacktestsRun.Inc()
	m.TradesSimulated.Add(float64(trades))
	m.BacktestDuration.Observe(d.Seconds())
}
