// internal/training/ensemble/tree.go
package ensemble

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a regression tree. Leaves carry the predicted
// value; internal nodes split on feature <= threshold.
type TreeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

func (n *TreeNode) predict(features []float64) float64 {
	node := n
	for !node.Leaf {
		if features[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// treeParams bounds tree growth.
type treeParams struct {
	maxDepth    int
	minLeaf     int
	featureSubs int // 0 means consider all features at each split
}

// buildTree grows a weighted regression tree on the rows named by idx,
// minimizing weighted squared error.
func buildTree(X [][]float64, y, w []float64, idx []int, depth int, params treeParams, rng *rand.Rand) *TreeNode {
	if depth >= params.maxDepth || len(idx) <= params.minLeaf {
		return &TreeNode{Leaf: true, Value: weightedMean(y, w, idx)}
	}

	feature, threshold, ok := bestSplit(X, y, w, idx, params, rng)
	if !ok {
		return &TreeNode{Leaf: true, Value: weightedMean(y, w, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Leaf: true, Value: weightedMean(y, w, idx)}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(X, y, w, left, depth+1, params, rng),
		Right:     buildTree(X, y, w, right, depth+1, params, rng),
	}
}

func bestSplit(X [][]float64, y, w []float64, idx []int, params treeParams, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(X[idx[0]])
	candidates := make([]int, nFeatures)
	for i := range candidates {
		candidates[i] = i
	}
	if params.featureSubs > 0 && params.featureSubs < nFeatures {
		rng.Shuffle(nFeatures, func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:params.featureSubs]
	}

	bestErr := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, f := range candidates {
		thresholds := splitCandidates(X, idx, f)
		for _, t := range thresholds {
			err, ok := splitError(X, y, w, idx, f, t)
			if ok && err < bestErr {
				bestErr = err
				bestFeature = f
				bestThreshold = t
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// splitCandidates returns midpoints between distinct sorted feature
// values, capped to keep tree building cheap on large logs.
func splitCandidates(X [][]float64, idx []int, feature int) []float64 {
	seen := map[float64]bool{}
	var values []float64
	for _, i := range idx {
		v := X[i][feature]
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return nil
	}
	sort.Float64s(values)

	const maxCandidates = 16
	step := 1
	if len(values) > maxCandidates {
		step = len(values) / maxCandidates
	}

	var out []float64
	for i := step; i < len(values); i += step {
		out = append(out, (values[i-1]+values[i])/2)
	}
	return out
}

func splitError(X [][]float64, y, w []float64, idx []int, feature int, threshold float64) (float64, bool) {
	var sumL, wL, sumR, wR float64
	for _, i := range idx {
		if X[i][feature] <= threshold {
			sumL += w[i] * y[i]
			wL += w[i]
		} else {
			sumR += w[i] * y[i]
			wR += w[i]
		}
	}
	if wL == 0 || wR == 0 {
		return 0, false
	}

	meanL, meanR := sumL/wL, sumR/wR
	var err float64
	for _, i := range idx {
		var d float64
		if X[i][feature] <= threshold {
			d = y[i] - meanL
		} else {
			d = y[i] - meanR
		}
		err += w[i] * d * d
	}
	return err, true
}

func weightedMean(y, w []float64, idx []int) float64 {
	var sum, wSum float64
	for _, i := range idx {
		sum += w[i] * y[i]
		wSum += w[i]
	}
	if wSum == 0 {
		return 0.5
	}
	return sum / wSum
}
