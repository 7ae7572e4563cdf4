// internal/training/ensemble/gbt.go
package ensemble

import (
	"math/rand"

	"match-engine/internal/models"
)

// GradientBoosting is a boosted regression-tree model: a base prediction
// plus learning-rate-scaled residual trees.
type GradientBoosting struct {
	Base         float64     `json:"base"`
	LearningRate float64     `json:"learningRate"`
	Trees        []*TreeNode `json:"trees"`
}

func (g *GradientBoosting) Name() string { return models.ModelGradientBoosting }

func (g *GradientBoosting) PredictProbability(features []float64) float64 {
	return clampProb(g.raw(features))
}

func (g *GradientBoosting) raw(features []float64) float64 {
	pred := g.Base
	for _, tree := range g.Trees {
		pred += g.LearningRate * tree.predict(features)
	}
	return pred
}

// FitGradientBoosting trains the model on recency-weighted examples. The
// seed fixes tree construction so trainer runs are reproducible.
func FitGradientBoosting(X [][]float64, y, w []float64, seed int64) *GradientBoosting {
	rng := rand.New(rand.NewSource(seed))

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}

	model := &GradientBoosting{
		Base:         weightedMean(y, w, idx),
		LearningRate: 0.1,
	}

	const rounds = 30
	params := treeParams{maxDepth: 3, minLeaf: 5}

	residuals := make([]float64, len(y))
	for round := 0; round < rounds; round++ {
		for i := range y {
			residuals[i] = y[i] - model.raw(X[i])
		}
		tree := buildTree(X, residuals, w, idx, 0, params, rng)
		model.Trees = append(model.Trees, tree)
	}

	return model
}
