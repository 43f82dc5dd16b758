// Package orchestrator drives walk-forward experiments: splitter x trainers
// x silver data, aggregating per-split metrics and logging records to the
// experiment registry.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/experiment"
	"equity-intraday-lab/internal/features"
	"equity-intraday-lab/internal/observability"
	"equity-intraday-lab/internal/split"
	"equity-intraday-lab/internal/train"
)

// ErrInsufficientData is returned when the silver frame is smaller than the
// configured minimum row count.
var ErrInsufficientData = errors.New("insufficient rows for training")

// Config carries the orchestrator knobs.
type Config struct {
	WalkForwardSplits int `yaml:"walk_forward_splits"`
	HorizonMinutes    int `yaml:"default_horizon_minutes"`
	MinRows           int `yaml:"min_rows"`
}

// DefaultConfig returns the orchestrator defaults.
func DefaultConfig() Config {
	return Config{WalkForwardSplits: 5, HorizonMinutes: 180, MinRows: 200}
}

// TrainRequest names a training run.
type TrainRequest struct {
	Symbol    string
	Timeframe string
	Families  []string // empty means all families
	Namespace string   // empty means the default namespace
}

// TrainResult is the outcome of one training run.
type TrainResult struct {
	ExperimentID string                        `json:"experiment_id"`
	Symbol       string                        `json:"symbol"`
	Timeframe    string                        `json:"timeframe"`
	Metrics      map[string]domain.EvalMetrics `json:"metrics"`
	Artifacts    map[string]any                `json:"artifacts"`
}

// ValidationResult is the outcome of a walk-forward validation pass. It is
// never written to the experiment registry.
type ValidationResult struct {
	Symbol    string                   `json:"symbol"`
	Timeframe string                   `json:"timeframe"`
	Rows      []domain.ValidationRow   `json:"rows"`
	Alerts    []domain.ValidationAlert `json:"alerts"`
}

// Orchestrator wires the feature store, trainer families, and experiment
// registry into reproducible walk-forward runs.
type Orchestrator struct {
	cfg      Config
	modelCfg train.Config
	store    *features.FeatureStore
	registry *experiment.Registry
	obs      *observability.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// New creates an orchestrator. obs may be nil.
func New(cfg Config, modelCfg train.Config, store *features.FeatureStore, registry *experiment.Registry, obs *observability.Metrics, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		modelCfg: modelCfg,
		store:    store,
		registry: registry,
		obs:      obs,
		log:      log.With().Str("component", "orchestrator").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Train runs the full walk-forward experiment for one symbol/timeframe and
// logs the aggregated record to the experiment registry.
func (o *Orchestrator) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	rows, splits, err := o.prepare(req)
	if err != nil {
		return nil, err
	}

	families := o.resolveFamilies(req.Families)
	zoo := train.Families(o.modelCfg)

	aggregated := make(map[string]domain.EvalMetrics, len(families))
	names := make([]string, 0, len(families))
	for _, family := range families {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trainer, ok := zoo[family]
		if !ok {
			o.log.Warn().Str("family", family).Msg("unknown model family skipped")
			continue
		}

		started := o.now()
		perSplit := make([]domain.EvalMetrics, 0, len(splits))
		for _, sp := range splits {
			m, _, err := trainer.TrainAndScore(rows[:sp.TrainEnd], rows[sp.TrainEnd:sp.TestEnd])
			if err != nil {
				return nil, fmt.Errorf("family %s split %d-%d: %w", family, sp.TrainEnd, sp.TestEnd, err)
			}
			perSplit = append(perSplit, m)
		}
		aggregated[family] = aggregate(perSplit)
		names = append(names, family)

		if o.obs != nil {
			o.obs.ObserveTraining(family, len(splits), o.now().Sub(started))
		}
		o.log.Info().Str("family", family).Int("splits", len(splits)).
			Float64("rmse", aggregated[family].RMSE).Msg("family scored")
	}

	now := o.now().UTC()
	expID := fmt.Sprintf("exp-%s-%s-%s", domain.SymbolSafe(req.Symbol), req.Timeframe, now.Format(domain.RunIDLayout))

	rec := domain.ExperimentRecord{
		ExperimentID: expID,
		Symbol:       req.Symbol,
		Timeframe:    req.Timeframe,
		Families:     names,
		Metrics:      aggregated,
		Artifacts: map[string]any{
			"rows":   len(rows),
			"splits": len(splits),
		},
		CreatedAt: now,
	}
	path, err := o.registry.Log(rec)
	if err != nil {
		return nil, err
	}
	rec.Artifacts["registry_path"] = path
	if o.obs != nil {
		o.obs.ExperimentsLogged.Inc()
	}

	return &TrainResult{
		ExperimentID: expID,
		Symbol:       req.Symbol,
		Timeframe:    req.Timeframe,
		Metrics:      aggregated,
		Artifacts:    rec.Artifacts,
	}, nil
}

// WalkForwardValidate scores each family per split and raises alerts when
// rmse relative to the last test close exceeds alertThresholdPct. Nothing is
// written to the experiment registry.
func (o *Orchestrator) WalkForwardValidate(ctx context.Context, req TrainRequest, alertThresholdPct float64) (*ValidationResult, error) {
	rows, splits, err := o.prepare(req)
	if err != nil {
		return nil, err
	}

	families := o.resolveFamilies(req.Families)
	zoo := train.Families(o.modelCfg)

	res := &ValidationResult{Symbol: req.Symbol, Timeframe: req.Timeframe}
	for _, family := range families {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trainer, ok := zoo[family]
		if !ok {
			o.log.Warn().Str("family", family).Msg("unknown model family skipped")
			continue
		}
		for i, sp := range splits {
			m, _, err := trainer.TrainAndScore(rows[:sp.TrainEnd], rows[sp.TrainEnd:sp.TestEnd])
			if err != nil {
				return nil, fmt.Errorf("family %s split %d: %w", family, i, err)
			}

			lastClose := rows[sp.TestEnd-1].Close
			rmsePct := 0.0
			if lastClose != 0 {
				rmsePct = m.RMSE / lastClose
			}
			res.Rows = append(res.Rows, domain.ValidationRow{
				Family: family, Split: i, RMSE: m.RMSE, MAE: m.MAE, RMSEPct: rmsePct,
			})
			if rmsePct > alertThresholdPct {
				res.Alerts = append(res.Alerts, domain.ValidationAlert{
					Family: family, Split: i, Metric: "rmse", Value: m.RMSE,
				})
			}
		}
	}
	return res, nil
}

// prepare loads the silver frame, enforces the minimum row count, sorts, and
// builds the split plan. The first row is dropped because its lagged close
// is undefined.
func (o *Orchestrator) prepare(req TrainRequest) ([]domain.SilverRow, []split.Split, error) {
	rows, err := o.store.LoadFeatures(req.Symbol, req.Timeframe, 0, req.Namespace, "")
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < o.cfg.MinRows {
		return nil, nil, fmt.Errorf("%w: %d rows, need %d", ErrInsufficientData, len(rows), o.cfg.MinRows)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].StartTS < rows[j].StartTS })
	rows = rows[1:]

	horizon, err := o.forecastHorizon(req.Timeframe)
	if err != nil {
		return nil, nil, err
	}

	splitter := split.New(o.cfg.WalkForwardSplits, horizon)
	splits, err := splitter.Split(len(rows))
	if err != nil {
		return nil, nil, err
	}
	return rows, splits, nil
}

// forecastHorizon converts the configured horizon in minutes into a test
// slice length in candles.
func (o *Orchestrator) forecastHorizon(timeframe string) (int, error) {
	minutes, err := domain.TimeframeMinutes(timeframe)
	if err != nil {
		return 0, err
	}
	horizon := o.cfg.HorizonMinutes / minutes
	if horizon < 1 {
		horizon = 1
	}
	return horizon, nil
}

func (o *Orchestrator) resolveFamilies(requested []string) []string {
	if len(requested) == 0 {
		return train.FamilyNames()
	}
	return requested
}

// aggregate takes the per-key arithmetic mean of metrics across splits.
func aggregate(ms []domain.EvalMetrics) domain.EvalMetrics {
	if len(ms) == 0 {
		return domain.EvalMetrics{}
	}
	var out domain.EvalMetrics
	for _, m := range ms {
		out.MAE += m.MAE
		out.RMSE += m.RMSE
		out.MAPE += m.MAPE
		out.DirectionalAccuracy += m.DirectionalAccuracy
	}
	n := float64(len(ms))
	out.MAE /= n
	out.RMSE /= n
	out.MAPE /= n
	out.DirectionalAccuracy /= n
	return out
}
