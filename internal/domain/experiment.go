package domain

import "time"

// EvalMetrics holds the trainer evaluation metrics for one model family.
// MAE and RMSE are in price units; MAPE and DirectionalAccuracy are percent.
type EvalMetrics struct {
	MAE                 float64 `json:"mae"`
	RMSE                float64 `json:"rmse"`
	MAPE                float64 `json:"mape"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
}

// ExperimentRecord is one append-only entry in the experiment registry.
// Immutable once written.
type ExperimentRecord struct {
	ExperimentID string                 `json:"experiment_id"`
	Symbol       string                 `json:"symbol"`
	Timeframe    string                 `json:"timeframe"`
	Families     []string               `json:"families"`
	Metrics      map[string]EvalMetrics `json:"metrics"` // family -> aggregated metrics
	Artifacts    map[string]any         `json:"artifacts"`
	CreatedAt    time.Time              `json:"created_at"`
}

// BestRMSE returns the minimum RMSE across all families in the record.
// Returns false if the record carries no metrics.
func (r *ExperimentRecord) BestRMSE() (float64, bool) {
	best := 0.0
	found := false
	for _, m := range r.Metrics {
		if !found || m.RMSE < best {
			best = m.RMSE
			found = true
		}
	}
	return best, found
}

// ValidationRow is one per-split row emitted by walk-forward validation.
type ValidationRow struct {
	Family  string  `json:"family"`
	Split   int     `json:"split"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
	RMSEPct float64 `json:"rmse_pct"` // rmse / last close of the test slice
}

// ValidationAlert flags a split whose error exceeded the alert threshold.
type ValidationAlert struct {
	Family string  `json:"family"`
	Split  int     `json:"split"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}
