// internal/models/ensemble.go
package models

import (
	"encoding/json"
	"time"
)

// Sub-model names inside an ensemble artifact.
const (
	ModelGradientBoosting = "gradient_boosting"
	ModelRandomForest     = "random_forest"
	ModelLogistic         = "logistic"
)

// HeuristicModelVersion marks results produced without a trained ensemble.
const HeuristicModelVersion = "heuristic-v1"

// ModelMetrics are the held-out evaluation metrics of one trained
// ensemble.
type ModelMetrics struct {
	Accuracy         float64 `json:"accuracy"`
	AUCROC           float64 `json:"aucRoc"`
	CalibrationError float64 `json:"calibrationError"`
	BrierScore       float64 `json:"brierScore"`
}

// FeatureImportance ranks one input feature by its learned weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// EnsembleArtifact is the versioned, serialized bundle of the three
// sub-models plus training metadata. Immutable once published.
type EnsembleArtifact struct {
	Version           string                     `json:"version"`
	TrainedAt         time.Time                  `json:"trainedAt"`
	SampleCount       int                        `json:"sampleCount"`
	Metrics           ModelMetrics               `json:"metrics"`
	FeatureImportance []FeatureImportance        `json:"featureImportance"`
	SubModels         map[string]json.RawMessage `json:"subModels"`
}
