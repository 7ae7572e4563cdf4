// internal/engine/probability/calculator.go

// Package probability converts component scores into a calibrated 0-100
// interview probability, blending the heuristic weighted score with the
// trained ensemble when one is available.
package probability

import (
	"math"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/internal/training/ensemble"
	"match-engine/internal/training/features"
)

// Scoring mode labels reported on metrics.
const (
	ModeHeuristic = "heuristic"
	ModeEnsemble  = "ensemble"
)

// ModelSource provides the current ensemble snapshot. Satisfied by
// *ensemble.Store.
type ModelSource interface {
	Current() (model *ensemble.Ensemble, degraded bool)
}

// Result is one calculated probability plus the metadata callers attach
// to the match result.
type Result struct {
	RawScore     float64
	Probability  float64
	ModelVersion string
	Mode         string

	// Degraded is set when an ensemble was expected but unusable and the
	// calculator fell back to pure heuristic.
	Degraded bool
}

// Calculator is safe for concurrent use; all state is read-only after
// construction apart from the atomically swapped model snapshot.
type Calculator struct {
	matching config.MatchingConfig
	models   ModelSource
	log      logger.Logger
}

func New(matching config.MatchingConfig, source ModelSource, log logger.Logger) *Calculator {
	return &Calculator{matching: matching, models: source, log: log}
}

// Calculate produces the interview probability for one scored match.
// Never fails: a missing or broken model degrades to heuristic-only.
func (c *Calculator) Calculate(profile *models.CandidateProfile, scores models.ComponentScores) Result {
	raw := c.matching.Weights.Apply(scores)
	heuristic := c.calibrate(raw)

	model, degraded := c.models.Current()
	if model == nil {
		metrics.MatchesScored.WithLabelValues(ModeHeuristic).Inc()
		if degraded {
			c.log.Warn("model snapshot unavailable, scoring heuristic-only", map[string]interface{}{
				"rawScore": raw,
			})
		}
		return Result{
			RawScore:     raw,
			Probability:  heuristic,
			ModelVersion: models.HeuristicModelVersion,
			Mode:         ModeHeuristic,
			Degraded:     degraded,
		}
	}

	vec := features.Vector(profile, scores)
	modelProb := model.Predict(vec) * 100
	if math.IsNaN(modelProb) {
		metrics.MatchesScored.WithLabelValues(ModeHeuristic).Inc()
		c.log.Warn("ensemble produced no prediction, scoring heuristic-only", map[string]interface{}{
			"modelVersion": model.Version,
		})
		return Result{
			RawScore:     raw,
			Probability:  heuristic,
			ModelVersion: models.HeuristicModelVersion,
			Mode:         ModeHeuristic,
			Degraded:     true,
		}
	}

	blend := c.matching.HeuristicBlend
	prob := blend*heuristic + (1-blend)*modelProb

	metrics.MatchesScored.WithLabelValues(ModeEnsemble).Inc()
	return Result{
		RawScore:     raw,
		Probability:  clampPercent(prob),
		ModelVersion: model.Version,
		Mode:         ModeEnsemble,
	}
}

// calibrate maps the raw weighted score through the configured sigmoid
// onto the 0-100 scale.
func (c *Calculator) calibrate(raw float64) float64 {
	k := c.matching.SigmoidSteepness
	m := c.matching.SigmoidMidpoint
	return clampPercent(100.0 / (1.0 + math.Exp(-k*(raw-m))))
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
