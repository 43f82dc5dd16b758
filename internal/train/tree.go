package train

import (
	"math"
	"math/rand"
	"sort"
)

// treeConfig controls regression tree growth.
type treeConfig struct {
	maxDepth      int
	minLeaf       int
	maxThresholds int // candidate thresholds per feature
	featureSubset int // features considered per split; 0 means all
}

// treeNode is one node of a CART regression tree.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

// growTree fits a regression tree on rows X[idx] with targets y[idx] by
// greedy variance reduction. rng drives feature subsampling; pass nil to
// consider every feature at every split.
func growTree(X [][]float64, y []float64, idx []int, cfg treeConfig, depth int, rng *rand.Rand) *treeNode {
	mean := meanAt(y, idx)
	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf {
		return &treeNode{leaf: true, value: mean}
	}

	feat, thr, ok := bestSplit(X, y, idx, cfg, rng)
	if !ok {
		return &treeNode{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minLeaf || len(right) < cfg.minLeaf {
		return &treeNode{leaf: true, value: mean}
	}

	return &treeNode{
		feature:   feat,
		threshold: thr,
		left:      growTree(X, y, left, cfg, depth+1, rng),
		right:     growTree(X, y, right, cfg, depth+1, rng),
	}
}

// bestSplit scans candidate thresholds per feature and returns the split
// with the lowest total squared error. Thresholds are taken at evenly spaced
// order statistics of the node's values.
func bestSplit(X [][]float64, y []float64, idx []int, cfg treeConfig, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(X[idx[0]])
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	if cfg.featureSubset > 0 && cfg.featureSubset < nFeatures && rng != nil {
		rng.Shuffle(nFeatures, func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = features[:cfg.featureSubset]
	}

	bestScore := math.Inf(1)
	bestFeat, bestThr := -1, 0.0

	vals := make([]float64, 0, len(idx))
	for _, f := range features {
		vals = vals[:0]
		for _, i := range idx {
			vals = append(vals, X[i][f])
		}
		sort.Float64s(vals)
		if vals[0] == vals[len(vals)-1] {
			continue
		}

		steps := cfg.maxThresholds
		if steps > len(vals)-1 {
			steps = len(vals) - 1
		}
		prev := math.NaN()
		for s := 1; s <= steps; s++ {
			thr := vals[s*len(vals)/(steps+1)]
			if thr == prev || thr == vals[len(vals)-1] {
				continue
			}
			prev = thr

			score, ok := splitScore(X, y, idx, f, thr, cfg.minLeaf)
			if ok && score < bestScore {
				bestScore = score
				bestFeat = f
				bestThr = thr
			}
		}
	}

	return bestFeat, bestThr, bestFeat >= 0
}

// splitScore returns the summed squared error of the two children induced by
// (feature, threshold). ok is false when either side is below minLeaf.
func splitScore(X [][]float64, y []float64, idx []int, feature int, thr float64, minLeaf int) (float64, bool) {
	var nL, nR float64
	var sumL, sumR, sqL, sqR float64
	for _, i := range idx {
		v := y[i]
		if X[i][feature] <= thr {
			nL++
			sumL += v
			sqL += v * v
		} else {
			nR++
			sumR += v
			sqR += v * v
		}
	}
	if nL < float64(minLeaf) || nR < float64(minLeaf) {
		return 0, false
	}
	// SSE = sum(y^2) - n*mean^2 per side.
	sse := (sqL - sumL*sumL/nL) + (sqR - sumR*sumR/nR)
	return sse, true
}

// predict walks the tree for one feature vector.
func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
