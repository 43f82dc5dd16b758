package train

import (
	"equity-intraday-lab/internal/domain"
)

// boostedModel is a stage-wise additive ensemble of shallow trees.
type boostedModel struct {
	base  float64
	trees []*treeNode
	lr    float64
}

func (m *boostedModel) predict(x []float64) float64 {
	out := m.base
	for _, t := range m.trees {
		out += m.lr * t.predict(x)
	}
	return out
}

// fitBoosted fits a squared-loss gradient-boosted ensemble: each stage fits
// a shallow tree to the current residuals.
func fitBoosted(X [][]float64, y []float64, stages, depth int, lr float64) *boostedModel {
	n := len(y)
	base := 0.0
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	cfg := treeConfig{maxDepth: depth, minLeaf: 3, maxThresholds: 16}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	model := &boostedModel{base: base, lr: lr, trees: make([]*treeNode, 0, stages)}
	current := make([]float64, n)
	for i := range current {
		current[i] = base
	}

	residual := make([]float64, n)
	for s := 0; s < stages; s++ {
		for i := range residual {
			residual[i] = y[i] - current[i]
		}
		tree := growTree(X, residual, idx, cfg, 0, nil)
		model.trees = append(model.trees, tree)
		for i := range current {
			current[i] += lr * tree.predict(X[i])
		}
	}
	return model
}

// GradientBoosting is a boosted regressor on the frozen feature vector.
type GradientBoosting struct {
	cfg Config
}

// NewGradientBoosting creates a boosting trainer with the configured defaults.
func NewGradientBoosting(cfg Config) *GradientBoosting {
	return &GradientBoosting{cfg: cfg}
}

// Name implements Trainer.
func (g *GradientBoosting) Name() string {
	return FamilyGradientBoosting
}

// TrainAndScore implements Trainer.
func (g *GradientBoosting) TrainAndScore(train, test []domain.SilverRow) (domain.EvalMetrics, map[string]any, error) {
	if len(train) == 0 || len(test) == 0 {
		return domain.EvalMetrics{}, nil, ErrEmptyFrame
	}

	model := fitBoosted(featureMatrix(train), targets(train), g.cfg.BoostingStages, g.cfg.BoostingDepth, g.cfg.LearningRate)

	testX := featureMatrix(test)
	preds := make([]float64, len(testX))
	for i, x := range testX {
		preds[i] = model.predict(x)
	}

	meta := map[string]any{
		"n_estimators":  g.cfg.BoostingStages,
		"max_depth":     g.cfg.BoostingDepth,
		"learning_rate": g.cfg.LearningRate,
	}
	return Evaluate(preds, targets(test)), meta, nil
}
