// internal/training/ensemble/predictor_test.go
package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/models"
)

// syntheticData builds a separable training set: strong feature vectors
// labelled as offers, weak ones as rejections, mixed ones as interviews.
func syntheticData() (X [][]float64, y, w []float64) {
	strong := []float64{0.8, 1, 1, 1, 0.9, 0.9, 1.0, 1.0, 0.9, 0.6, 1.0}
	weak := []float64{0.1, 0, 0, 0, 0.2, 0.3, 0.1, 0.2, 0.4, 0.1, 0.4}
	mixed := []float64{0.4, 1, 0, 1, 0.6, 0.5, 0.5, 0.6, 0.7, 0.3, 0.8}

	for i := 0; i < 20; i++ {
		X = append(X, strong)
		y = append(y, float64(models.OutcomeOffer))
		w = append(w, 1.0)

		X = append(X, weak)
		y = append(y, float64(models.OutcomeRejected))
		w = append(w, 1.0)

		X = append(X, mixed)
		y = append(y, float64(models.OutcomeInterview))
		w = append(w, 0.8)
	}
	return X, y, w
}

func buildTestEnsemble(t *testing.T) *Ensemble {
	t.Helper()
	X, y, w := syntheticData()
	return &Ensemble{
		Version: "test-v1",
		SubModels: []Predictor{
			FitGradientBoosting(X, y, w, 1),
			FitRandomForest(X, y, w, 2),
			FitLogistic(X, y, w),
		},
		SampleCount: len(X),
	}
}

func TestSubModelsSeparateStrongFromWeak(t *testing.T) {
	X, y, w := syntheticData()
	strong := X[0]
	weak := X[1]

	subs := []Predictor{
		FitGradientBoosting(X, y, w, 1),
		FitRandomForest(X, y, w, 2),
		FitLogistic(X, y, w),
	}

	for _, sub := range subs {
		pStrong := sub.PredictProbability(strong)
		pWeak := sub.PredictProbability(weak)

		assert.Greater(t, pStrong, pWeak, "sub-model %s should rank strong candidates above weak", sub.Name())
		assert.GreaterOrEqual(t, pStrong, 0.0)
		assert.LessOrEqual(t, pStrong, 1.0)
		assert.GreaterOrEqual(t, pWeak, 0.0)
		assert.LessOrEqual(t, pWeak, 1.0)
	}
}

func TestEnsemblePredictAveragesSubModels(t *testing.T) {
	e := buildTestEnsemble(t)
	features, _, _ := syntheticData()
	strong := features[0]

	var sum float64
	for _, sub := range e.SubModels {
		sum += sub.PredictProbability(strong)
	}
	expected := sum / float64(len(e.SubModels))

	assert.InDelta(t, expected, e.Predict(strong), 1e-12)
}

func TestFitIsDeterministicForFixedSeed(t *testing.T) {
	X, y, w := syntheticData()
	probe := X[2]

	a := FitGradientBoosting(X, y, w, 7)
	b := FitGradientBoosting(X, y, w, 7)
	assert.Equal(t, a.PredictProbability(probe), b.PredictProbability(probe))

	fa := FitRandomForest(X, y, w, 7)
	fb := FitRandomForest(X, y, w, 7)
	assert.Equal(t, fa.PredictProbability(probe), fb.PredictProbability(probe))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := buildTestEnsemble(t)

	subModels, err := e.Encode()
	require.NoError(t, err)

	artifact := &models.EnsembleArtifact{
		Version:     e.Version,
		SampleCount: e.SampleCount,
		SubModels:   subModels,
	}

	decoded, err := Decode(artifact)
	require.NoError(t, err)
	require.Len(t, decoded.SubModels, 3)

	X, _, _ := syntheticData()
	for _, probe := range [][]float64{X[0], X[1], X[2]} {
		assert.InDelta(t, e.Predict(probe), decoded.Predict(probe), 1e-12)
	}
}

func TestDecodeRejectsMissingSubModel(t *testing.T) {
	e := buildTestEnsemble(t)
	subModels, err := e.Encode()
	require.NoError(t, err)
	delete(subModels, models.ModelLogistic)

	_, err = Decode(&models.EnsembleArtifact{Version: "broken", SubModels: subModels})
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.ModelLogistic)
}

func TestSnapshotStoreLifecycle(t *testing.T) {
	store := NewStore()

	// Cold start: no model, not degraded.
	model, degraded := store.Current()
	assert.Nil(t, model)
	assert.False(t, degraded)

	// Load failure before any publish is reported as degraded.
	store.MarkDegraded()
	model, degraded = store.Current()
	assert.Nil(t, model)
	assert.True(t, degraded)

	// Publishing clears the degraded state.
	e := buildTestEnsemble(t)
	store.Publish(e)
	model, degraded = store.Current()
	require.NotNil(t, model)
	assert.False(t, degraded)
	assert.Equal(t, "test-v1", model.Version)

	// A later load failure keeps the last good model active.
	store.MarkDegraded()
	model, degraded = store.Current()
	require.NotNil(t, model)
	assert.False(t, degraded)
}
