// internal/training/ensemble/forest.go
package ensemble

import (
	"math/rand"

	"match-engine/internal/models"
)

// RandomForest averages bootstrap-trained regression trees with feature
// subsampling at each split.
type RandomForest struct {
	Trees []*TreeNode `json:"trees"`
}

func (f *RandomForest) Name() string { return models.ModelRandomForest }

func (f *RandomForest) PredictProbability(features []float64) float64 {
	if len(f.Trees) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.predict(features)
	}
	return clampProb(sum / float64(len(f.Trees)))
}

// FitRandomForest trains the model on recency-weighted examples.
func FitRandomForest(X [][]float64, y, w []float64, seed int64) *RandomForest {
	rng := rand.New(rand.NewSource(seed))

	const nTrees = 25
	params := treeParams{maxDepth: 6, minLeaf: 3, featureSubs: 4}

	forest := &RandomForest{}
	for t := 0; t < nTrees; t++ {
		// Bootstrap sample; recency weights still apply inside splits.
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		forest.Trees = append(forest.Trees, buildTree(X, y, w, idx, 0, params, rng))
	}

	return forest
}
