// internal/engine/probability/calculator_test.go
package probability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
	"match-engine/internal/training/ensemble"
)

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		Weights:          config.DefaultWeights(),
		SigmoidSteepness: 12.0,
		SigmoidMidpoint:  0.76,
		HeuristicBlend:   0.5,
	}
}

// fixedModel always predicts the same probability.
type fixedModel struct{ p float64 }

func (f fixedModel) PredictProbability([]float64) float64 { return f.p }
func (f fixedModel) Name() string                         { return "fixed" }

func storeWith(model *ensemble.Ensemble) *ensemble.Store {
	store := ensemble.NewStore()
	if model != nil {
		store.Publish(model)
	}
	return store
}

// strongScores reproduce the documented strong-fit example: every
// component high, raw weighted score just under 0.95.
func strongScores() models.ComponentScores {
	return models.ComponentScores{
		SkillDepth:          0.95,
		ExperienceRelevance: 1.0,
		SeniorityMatch:      1.0,
		IndustryFit:         1.0,
		EducationMatch:      1.0,
		KeywordDensity:      0.62,
		Recency:             0.65,
	}
}

func TestHeuristicStrongFitLandsNearNinety(t *testing.T) {
	calc := New(testMatchingConfig(), storeWith(nil), logger.NewNoOpLogger())
	profile := &models.CandidateProfile{YearsExperience: 8}

	scores := strongScores()
	raw := config.DefaultWeights().Apply(scores)
	assert.InDelta(t, 0.9485, raw, 1e-4)

	result := calc.Calculate(profile, scores)
	assert.Equal(t, ModeHeuristic, result.Mode)
	assert.Equal(t, models.HeuristicModelVersion, result.ModelVersion)
	assert.False(t, result.Degraded)
	assert.GreaterOrEqual(t, result.Probability, 87.0)
	assert.LessOrEqual(t, result.Probability, 91.0)
}

func TestHeuristicIsDeterministic(t *testing.T) {
	calc := New(testMatchingConfig(), storeWith(nil), logger.NewNoOpLogger())
	profile := &models.CandidateProfile{YearsExperience: 8}
	scores := strongScores()

	first := calc.Calculate(profile, scores)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, calc.Calculate(profile, scores))
	}
}

func TestProbabilityStaysInRangeAtExtremes(t *testing.T) {
	calc := New(testMatchingConfig(), storeWith(nil), logger.NewNoOpLogger())
	profile := &models.CandidateProfile{}

	zero := calc.Calculate(profile, models.ComponentScores{})
	assert.GreaterOrEqual(t, zero.Probability, 0.0)

	perfect := calc.Calculate(profile, models.ComponentScores{
		SkillDepth: 1, ExperienceRelevance: 1, SeniorityMatch: 1,
		IndustryFit: 1, EducationMatch: 1, KeywordDensity: 1, Recency: 1,
	})
	assert.LessOrEqual(t, perfect.Probability, 100.0)
	assert.Greater(t, perfect.Probability, zero.Probability)
}

func TestEnsembleBlending(t *testing.T) {
	model := &ensemble.Ensemble{
		Version:   "ensemble-test",
		SubModels: []ensemble.Predictor{fixedModel{p: 0.80}},
	}
	calc := New(testMatchingConfig(), storeWith(model), logger.NewNoOpLogger())
	profile := &models.CandidateProfile{YearsExperience: 8}

	result := calc.Calculate(profile, strongScores())
	require.Equal(t, ModeEnsemble, result.Mode)
	assert.Equal(t, "ensemble-test", result.ModelVersion)

	heuristicOnly := New(testMatchingConfig(), storeWith(nil), logger.NewNoOpLogger()).
		Calculate(profile, strongScores())
	expected := 0.5*heuristicOnly.Probability + 0.5*80.0
	assert.InDelta(t, expected, result.Probability, 1e-9)
}

func TestDegradedSnapshotFallsBackToHeuristic(t *testing.T) {
	store := ensemble.NewStore()
	store.MarkDegraded()

	calc := New(testMatchingConfig(), store, logger.NewNoOpLogger())
	profile := &models.CandidateProfile{YearsExperience: 8}

	result := calc.Calculate(profile, strongScores())
	assert.Equal(t, ModeHeuristic, result.Mode)
	assert.Equal(t, models.HeuristicModelVersion, result.ModelVersion)
	assert.True(t, result.Degraded)

	// The probability itself matches a clean heuristic run.
	clean := New(testMatchingConfig(), storeWith(nil), logger.NewNoOpLogger()).
		Calculate(profile, strongScores())
	assert.Equal(t, clean.Probability, result.Probability)
}

func TestEmptyEnsembleDegradesToHeuristic(t *testing.T) {
	model := &ensemble.Ensemble{Version: "empty"}
	calc := New(testMatchingConfig(), storeWith(model), logger.NewNoOpLogger())

	result := calc.Calculate(&models.CandidateProfile{}, strongScores())
	assert.Equal(t, ModeHeuristic, result.Mode)
	assert.True(t, result.Degraded)
}
