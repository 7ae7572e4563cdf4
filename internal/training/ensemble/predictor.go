// internal/training/ensemble/predictor.go

// Package ensemble implements the versioned predictor bundle: three
// independently trained statistical models behind a common Predictor
// interface, combined by simple averaging. Snapshots are immutable once
// built and are swapped atomically, so online scorers always read a
// stable model reference.
package ensemble

import (
	"encoding/json"
	"fmt"
	"math"

	"match-engine/internal/models"
)

// FeatureCount is the dimensionality of the training feature vector.
const FeatureCount = 11

// Predictor is the capability shared by all sub-model variants: map a
// feature vector to an interview probability in [0,1].
type Predictor interface {
	PredictProbability(features []float64) float64
	Name() string
}

// Ensemble is one immutable model snapshot. Never mutated after Build;
// publish a new version instead.
type Ensemble struct {
	Version     string
	SubModels   []Predictor
	Metrics     models.ModelMetrics
	SampleCount int
}

// Predict averages the sub-model probabilities.
func (e *Ensemble) Predict(features []float64) float64 {
	if len(e.SubModels) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, m := range e.SubModels {
		sum += clampProb(m.PredictProbability(features))
	}
	return sum / float64(len(e.SubModels))
}

// Decode rebuilds an Ensemble from a stored artifact.
func Decode(artifact *models.EnsembleArtifact) (*Ensemble, error) {
	e := &Ensemble{
		Version:     artifact.Version,
		Metrics:     artifact.Metrics,
		SampleCount: artifact.SampleCount,
	}

	for _, name := range []string{models.ModelGradientBoosting, models.ModelRandomForest, models.ModelLogistic} {
		raw, ok := artifact.SubModels[name]
		if !ok {
			return nil, fmt.Errorf("artifact %s missing sub-model %q", artifact.Version, name)
		}
		sub, err := decodeSubModel(name, raw)
		if err != nil {
			return nil, fmt.Errorf("artifact %s sub-model %q: %w", artifact.Version, name, err)
		}
		e.SubModels = append(e.SubModels, sub)
	}

	return e, nil
}

// Encode serializes the sub-models for artifact storage.
func (e *Ensemble) Encode() (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	for _, sub := range e.SubModels {
		raw, err := json.Marshal(sub)
		if err != nil {
			return nil, fmt.Errorf("encode sub-model %q: %w", sub.Name(), err)
		}
		out[sub.Name()] = raw
	}
	return out, nil
}

func decodeSubModel(name string, raw json.RawMessage) (Predictor, error) {
	switch name {
	case models.ModelGradientBoosting:
		var m GradientBoosting
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case models.ModelRandomForest:
		var m RandomForest
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case models.ModelLogistic:
		var m Logistic
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	return nil, fmt.Errorf("unknown sub-model type %q", name)
}

func clampProb(p float64) float64 {
	if math.IsNaN(p) {
		return 0.5
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
