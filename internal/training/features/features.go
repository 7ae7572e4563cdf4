// internal/training/features/features.go

// Package features builds the training feature vector from a stored
// match result. The layout must stay stable across trainer runs: models
// trained on one layout are only valid for vectors with the same layout.
package features

import (
	"math"
	"time"

	"match-engine/internal/models"
)

// Names lists the feature vector layout in order. The four profile and
// requirement features come first, then the seven component scores in
// canonical order.
var Names = []string{
	"yearsExperienceNorm",
	"seniorityRequirementMet",
	"industryRequirementMet",
	"educationRequirementMet",
	models.ComponentSkillDepth,
	models.ComponentExperienceRelevance,
	models.ComponentSeniorityMatch,
	models.ComponentIndustryFit,
	models.ComponentEducationMatch,
	models.ComponentKeywordDensity,
	models.ComponentRecency,
}

// yearsCap bounds experience normalization; beyond this, more years do
// not change the feature.
const yearsCap = 20.0

// DefaultHalfLife is the recency-weight half-life applied to training
// examples when config does not override it.
const DefaultHalfLife = 180 * 24 * time.Hour

// Vector derives the feature vector for one scored match. Requirement-met
// booleans are derived from the component scores so that offline training
// sees exactly what the online scorer saw.
func Vector(profile *models.CandidateProfile, scores models.ComponentScores) []float64 {
	years := profile.YearsExperience / yearsCap
	if years > 1 {
		years = 1
	}
	if years < 0 {
		years = 0
	}

	return []float64{
		years,
		boolFeature(scores.SeniorityMatch >= 1.0),
		boolFeature(scores.IndustryFit >= 1.0),
		boolFeature(scores.EducationMatch >= 1.0),
		scores.SkillDepth,
		scores.ExperienceRelevance,
		scores.SeniorityMatch,
		scores.IndustryFit,
		scores.EducationMatch,
		scores.KeywordDensity,
		scores.Recency,
	}
}

// RecencyWeight decays training examples exponentially by age so recent
// outcomes dominate. halfLife <= 0 falls back to the default.
func RecencyWeight(observedAt, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	age := now.Sub(observedAt)
	if age <= 0 {
		return 1.0
	}
	return math.Exp(-math.Ln2 * age.Seconds() / halfLife.Seconds())
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
