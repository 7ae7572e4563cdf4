// internal/training/trainer/evaluate.go
package trainer

import (
	"math"
	"sort"

	"match-engine/internal/models"
	"match-engine/internal/training/ensemble"
)

// positiveLabel is the cut between negative and positive examples:
// interview (0.5) and offer (1.0) count as positive, rejection as
// negative.
const positiveLabel = 0.5

// evaluate computes held-out metrics for one model over labelled
// examples.
func evaluate(model *ensemble.Ensemble, X [][]float64, y []float64) models.ModelMetrics {
	if len(X) == 0 {
		return models.ModelMetrics{}
	}

	preds := make([]float64, len(X))
	for i, row := range X {
		preds[i] = model.Predict(row)
	}

	return models.ModelMetrics{
		Accuracy:         accuracy(preds, y),
		AUCROC:           aucROC(preds, y),
		CalibrationError: calibrationError(preds, y),
		BrierScore:       brier(preds, y),
	}
}

func accuracy(preds, y []float64) float64 {
	correct := 0
	for i, p := range preds {
		if (p >= 0.5) == (y[i] >= positiveLabel) {
			correct++
		}
	}
	return float64(correct) / float64(len(preds))
}

// aucROC is the rank-statistic AUC over the binarized labels. Degenerate
// sets with only one class score 0.5.
func aucROC(preds, y []float64) float64 {
	type pair struct {
		pred     float64
		positive bool
	}
	pairs := make([]pair, len(preds))
	positives, negatives := 0, 0
	for i, p := range preds {
		pos := y[i] >= positiveLabel
		pairs[i] = pair{pred: p, positive: pos}
		if pos {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pred < pairs[j].pred })

	// Sum of positive ranks, with ties sharing their average rank.
	var rankSum float64
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].pred == pairs[i].pred {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if pairs[k].positive {
				rankSum += avgRank
			}
		}
		i = j
	}

	auc := (rankSum - float64(positives)*float64(positives+1)/2.0) /
		(float64(positives) * float64(negatives))
	return auc
}

func brier(preds, y []float64) float64 {
	var sum float64
	for i, p := range preds {
		d := p - y[i]
		sum += d * d
	}
	return sum / float64(len(preds))
}

// calibrationError is the expected calibration error over ten equal-width
// probability bins.
func calibrationError(preds, y []float64) float64 {
	const bins = 10
	sumPred := make([]float64, bins)
	sumLabel := make([]float64, bins)
	count := make([]float64, bins)

	for i, p := range preds {
		b := int(p * bins)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		sumPred[b] += p
		sumLabel[b] += y[i]
		count[b]++
	}

	var ece float64
	total := float64(len(preds))
	for b := 0; b < bins; b++ {
		if count[b] == 0 {
			continue
		}
		gap := math.Abs(sumPred[b]/count[b] - sumLabel[b]/count[b])
		ece += (count[b] / total) * gap
	}
	return ece
}
