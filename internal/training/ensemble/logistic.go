// internal/training/ensemble/logistic.go
package ensemble

import (
	"match-engine/internal/models"
)

// Logistic is a weighted logistic regression over the feature vector.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (l *Logistic) Name() string { return models.ModelLogistic }

func (l *Logistic) PredictProbability(features []float64) float64 {
	z := l.Bias
	for i, w := range l.Weights {
		if i < len(features) {
			z += w * features[i]
		}
	}
	return sigmoid(z)
}

// FitLogistic trains the model with full-batch gradient descent on
// weighted cross-entropy. Deterministic, so no seed is taken.
func FitLogistic(X [][]float64, y, w []float64) *Logistic {
	nFeatures := FeatureCount
	if len(X) > 0 {
		nFeatures = len(X[0])
	}

	model := &Logistic{Weights: make([]float64, nFeatures)}
	if len(X) == 0 {
		return model
	}

	var totalWeight float64
	for _, wi := range w {
		totalWeight += wi
	}
	if totalWeight == 0 {
		return model
	}

	const (
		learningRate = 0.5
		epochs       = 300
	)

	gradW := make([]float64, nFeatures)
	for epoch := 0; epoch < epochs; epoch++ {
		for i := range gradW {
			gradW[i] = 0
		}
		gradB := 0.0

		for i, row := range X {
			err := model.PredictProbability(row) - y[i]
			for f, v := range row {
				gradW[f] += w[i] * err * v
			}
			gradB += w[i] * err
		}

		for f := range model.Weights {
			model.Weights[f] -= learningRate * gradW[f] / totalWeight
		}
		model.Bias -= learningRate * gradB / totalWeight
	}

	return model
}
