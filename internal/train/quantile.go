package train

import (
	"equity-intraday-lab/internal/domain"
)

// Quantile trains three boosted regressors: pinball-loss models at alpha and
// 1-alpha plus a squared-loss point estimate. Published metrics cover only
// the point estimate; the mean prediction bounds land in artifact metadata
// under avg_bounds.
type Quantile struct {
	cfg Config
}

// NewQuantile creates a quantile trainer with the configured defaults.
func NewQuantile(cfg Config) *Quantile {
	return &Quantile{cfg: cfg}
}

// Name implements Trainer.
func (q *Quantile) Name() string {
	return FamilyQuantile
}

// TrainAndScore implements Trainer.
func (q *Quantile) TrainAndScore(train, test []domain.SilverRow) (domain.EvalMetrics, map[string]any, error) {
	if len(train) == 0 || len(test) == 0 {
		return domain.EvalMetrics{}, nil, ErrEmptyFrame
	}

	X := featureMatrix(train)
	y := targets(train)

	lower := fitQuantileBoosted(X, y, q.cfg, q.cfg.QuantileAlpha)
	upper := fitQuantileBoosted(X, y, q.cfg, 1-q.cfg.QuantileAlpha)
	point := fitBoosted(X, y, q.cfg.BoostingStages, q.cfg.BoostingDepth, q.cfg.LearningRate)

	testX := featureMatrix(test)
	preds := make([]float64, len(testX))
	var lowerSum, upperSum float64
	for i, x := range testX {
		preds[i] = point.predict(x)
		lowerSum += lower.predict(x)
		upperSum += upper.predict(x)
	}

	n := float64(len(testX))
	meta := map[string]any{
		"alpha": q.cfg.QuantileAlpha,
		"avg_bounds": map[string]float64{
			"lower": lowerSum / n,
			"upper": upperSum / n,
		},
	}
	return Evaluate(preds, targets(test)), meta, nil
}

// fitQuantileBoosted boosts toward the alpha-quantile using the pinball-loss
// gradient: alpha above the current estimate, alpha-1 below it.
func fitQuantileBoosted(X [][]float64, y []float64, cfg Config, alpha float64) *boostedModel {
	n := len(y)
	base := quantileOf(y, alpha)

	tc := treeConfig{maxDepth: cfg.BoostingDepth, minLeaf: 3, maxThresholds: 16}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	model := &boostedModel{base: base, lr: cfg.LearningRate, trees: make([]*treeNode, 0, cfg.BoostingStages)}
	current := make([]float64, n)
	for i := range current {
		current[i] = base
	}

	grad := make([]float64, n)
	for s := 0; s < cfg.BoostingStages; s++ {
		for i := range grad {
			if y[i] > current[i] {
				grad[i] = alpha
			} else {
				grad[i] = alpha - 1
			}
		}
		tree := growTree(X, grad, idx, tc, 0, nil)
		model.trees = append(model.trees, tree)
		for i := range current {
			current[i] += cfg.LearningRate * tree.predict(X[i])
		}
	}
	return model
}

// quantileOf returns the alpha-quantile of values by linear interpolation.
func quantileOf(values []float64, alpha float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	insertionSort(sorted)

	pos := alpha * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func insertionSort(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}
