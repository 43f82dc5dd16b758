package train

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"equity-intraday-lab/internal/domain"
)

// RandomForest is a bagged ensemble of regression trees on the frozen
// 15-feature vector. Tree fitting is parallelised across a bounded worker
// pool; seeding is deterministic per tree so runs are reproducible.
type RandomForest struct {
	cfg Config
}

// NewRandomForest creates a forest trainer with the configured defaults.
func NewRandomForest(cfg Config) *RandomForest {
	return &RandomForest{cfg: cfg}
}

// Name implements Trainer.
func (f *RandomForest) Name() string {
	return FamilyRandomForest
}

// TrainAndScore implements Trainer.
func (f *RandomForest) TrainAndScore(train, test []domain.SilverRow) (domain.EvalMetrics, map[string]any, error) {
	if len(train) == 0 || len(test) == 0 {
		return domain.EvalMetrics{}, nil, ErrEmptyFrame
	}

	X := featureMatrix(train)
	y := targets(train)
	trees := f.fit(X, y)

	testX := featureMatrix(test)
	preds := make([]float64, len(testX))
	for i, x := range testX {
		sum := 0.0
		for _, t := range trees {
			sum += t.predict(x)
		}
		preds[i] = sum / float64(len(trees))
	}

	meta := map[string]any{
		"n_estimators": f.cfg.ForestTrees,
		"max_depth":    f.cfg.ForestMaxDepth,
	}
	return Evaluate(preds, targets(test)), meta, nil
}

// fit grows the ensemble on bootstrap samples with sqrt(features) subsets.
func (f *RandomForest) fit(X [][]float64, y []float64) []*treeNode {
	nRows := len(X)
	nFeatures := len(X[0])
	cfg := treeConfig{
		maxDepth:      f.cfg.ForestMaxDepth,
		minLeaf:       f.cfg.ForestMinLeaf,
		maxThresholds: 16,
		featureSubset: int(math.Ceil(math.Sqrt(float64(nFeatures)))),
	}

	trees := make([]*treeNode, f.cfg.ForestTrees)
	workers := runtime.NumCPU()
	if workers > f.cfg.ForestTrees {
		workers = f.cfg.ForestTrees
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewSource(f.cfg.Seed + int64(t)))
				idx := make([]int, nRows)
				for i := range idx {
					idx[i] = rng.Intn(nRows)
				}
				trees[t] = growTree(X, y, idx, cfg, 0, rng)
			}
		}()
	}
	for t := 0; t < f.cfg.ForestTrees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	return trees
}
