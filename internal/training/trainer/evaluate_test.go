// internal/training/trainer/evaluate_test.go
package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracyBinarizesInterviewAsPositive(t *testing.T) {
	preds := []float64{0.9, 0.8, 0.2, 0.4}
	labels := []float64{1.0, 0.5, 0.0, 0.0}
	assert.Equal(t, 1.0, accuracy(preds, labels))

	// Interview (0.5) predicted low counts as a miss.
	assert.Equal(t, 0.75, accuracy([]float64{0.9, 0.2, 0.2, 0.4}, labels))
}

func TestAUCROC(t *testing.T) {
	labels := []float64{1.0, 1.0, 0.0, 0.0}

	assert.Equal(t, 1.0, aucROC([]float64{0.9, 0.8, 0.2, 0.1}, labels), "perfect ranking")
	assert.Equal(t, 0.0, aucROC([]float64{0.1, 0.2, 0.8, 0.9}, labels), "inverted ranking")
	assert.Equal(t, 0.5, aucROC([]float64{0.5, 0.5, 0.5, 0.5}, labels), "uninformative ranking ties average out")
	assert.Equal(t, 0.5, aucROC([]float64{0.9, 0.8}, []float64{1.0, 1.0}), "single-class holdout is undefined, reported neutral")
}

func TestBrier(t *testing.T) {
	assert.Equal(t, 0.0, brier([]float64{1, 0, 1}, []float64{1, 0, 1}))
	assert.InDelta(t, 0.25, brier([]float64{0.5, 0.5}, []float64{1, 0}), 1e-9)
}

func TestCalibrationError(t *testing.T) {
	// Predictions matching the empirical rate in each bin are perfectly
	// calibrated.
	preds := []float64{0.95, 0.95, 0.95, 0.95, 0.05, 0.05, 0.05, 0.05}
	labels := []float64{1, 1, 1, 1, 0, 0, 0, 0}
	assert.InDelta(t, 0.05, calibrationError(preds, labels), 1e-9)

	// Confident and wrong in every bin.
	assert.InDelta(t, 0.95, calibrationError(
		[]float64{0.95, 0.95, 0.05, 0.05},
		[]float64{0, 0, 1, 1},
	), 1e-9)
}
