// Package train implements the model family zoo behind the training
// orchestrator: a fixed set of regression families with a uniform
// fit/predict/evaluate contract over silver feature rows.
package train

import (
	"math"

	"equity-intraday-lab/internal/domain"
)

// Model family names.
const (
	FamilyBaseline         = "baseline"
	FamilyRandomForest     = "random_forest"
	FamilyGradientBoosting = "gradient_boosting"
	FamilyQuantile         = "quantile"
)

// mapeFloor clips |actual| when computing MAPE.
const mapeFloor = 1e-8

// Trainer is the uniform contract of every model family: fit on the train
// frame, predict the test frame's closes, evaluate.
type Trainer interface {
	Name() string
	TrainAndScore(train, test []domain.SilverRow) (domain.EvalMetrics, map[string]any, error)
}

// Config carries the model hyperparameter defaults.
type Config struct {
	ForestTrees    int     `yaml:"forest_trees"`
	ForestMaxDepth int     `yaml:"forest_max_depth"`
	ForestMinLeaf  int     `yaml:"forest_min_leaf"`
	BoostingStages int     `yaml:"boosting_stages"`
	BoostingDepth  int     `yaml:"boosting_depth"`
	LearningRate   float64 `yaml:"learning_rate"`
	QuantileAlpha  float64 `yaml:"quantile_alpha"`
	Seed           int64   `yaml:"seed"`
}

// DefaultConfig returns the model hyperparameter defaults.
func DefaultConfig() Config {
	return Config{
		ForestTrees:    60,
		ForestMaxDepth: 8,
		ForestMinLeaf:  2,
		BoostingStages: 100,
		BoostingDepth:  3,
		LearningRate:   0.1,
		QuantileAlpha:  0.1,
		Seed:           42,
	}
}

// Families returns the fixed family set keyed by name.
func Families(cfg Config) map[string]Trainer {
	return map[string]Trainer{
		FamilyBaseline:         NewBaseline(),
		FamilyRandomForest:     NewRandomForest(cfg),
		FamilyGradientBoosting: NewGradientBoosting(cfg),
		FamilyQuantile:         NewQuantile(cfg),
	}
}

// FamilyNames returns the family set in its canonical order.
func FamilyNames() []string {
	return []string{FamilyBaseline, FamilyRandomForest, FamilyGradientBoosting, FamilyQuantile}
}

// featureMatrix extracts the frozen feature vectors; missing values have
// already been zero-filled at silver derivation.
func featureMatrix(rows []domain.SilverRow) [][]float64 {
	X := make([][]float64, len(rows))
	for i, r := range rows {
		X[i] = r.FeatureVector()
	}
	return X
}

// targets extracts the close column.
func targets(rows []domain.SilverRow) []float64 {
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = r.Close
	}
	return y
}

// Evaluate computes MAE, RMSE, MAPE and directional accuracy of predictions
// against actuals. MAPE clips |actual| to 1e-8; directional accuracy is the
// percentage of consecutive steps where prediction and actual move in the
// same direction.
func Evaluate(preds, actuals []float64) domain.EvalMetrics {
	n := len(actuals)
	if n == 0 || len(preds) != n {
		return domain.EvalMetrics{}
	}

	var absSum, sqSum, pctSum float64
	for i := 0; i < n; i++ {
		d := preds[i] - actuals[i]
		absSum += math.Abs(d)
		sqSum += d * d
		denom := math.Abs(actuals[i])
		if denom < mapeFloor {
			denom = mapeFloor
		}
		pctSum += math.Abs(d) / denom
	}

	matches, steps := 0, 0
	for i := 1; i < n; i++ {
		steps++
		if sign(preds[i]-preds[i-1]) == sign(actuals[i]-actuals[i-1]) {
			matches++
		}
	}
	dirAcc := 0.0
	if steps > 0 {
		dirAcc = float64(matches) / float64(steps) * 100
	}

	return domain.EvalMetrics{
		MAE:                 absSum / float64(n),
		RMSE:                math.Sqrt(sqSum / float64(n)),
		MAPE:                pctSum / float64(n) * 100,
		DirectionalAccuracy: dirAcc,
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
