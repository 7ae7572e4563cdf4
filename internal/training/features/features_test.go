// internal/training/features/features_test.go
package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/models"
)

func TestVectorLayout(t *testing.T) {
	profile := &models.CandidateProfile{YearsExperience: 10}
	scores := models.ComponentScores{
		SkillDepth:          0.85,
		ExperienceRelevance: 1.0,
		SeniorityMatch:      1.0,
		IndustryFit:         0.6,
		EducationMatch:      1.0,
		KeywordDensity:      0.3,
		Recency:             0.9,
	}

	vec := Vector(profile, scores)
	require.Len(t, vec, len(Names))

	assert.Equal(t, 0.5, vec[0], "10 years should normalize to 0.5")
	assert.Equal(t, 1.0, vec[1], "full seniority score marks the requirement met")
	assert.Equal(t, 0.0, vec[2], "partial industry score leaves the requirement unmet")
	assert.Equal(t, 1.0, vec[3])
	assert.Equal(t, scores.AsVector(), vec[4:])
}

func TestVectorCapsExperience(t *testing.T) {
	profile := &models.CandidateProfile{YearsExperience: 35}
	vec := Vector(profile, models.ComponentScores{})
	assert.Equal(t, 1.0, vec[0])
}

func TestRecencyWeightDecay(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	halfLife := 180 * 24 * time.Hour

	assert.Equal(t, 1.0, RecencyWeight(now, now, halfLife))
	assert.InDelta(t, 0.5, RecencyWeight(now.Add(-halfLife), now, halfLife), 1e-9)
	assert.InDelta(t, 0.25, RecencyWeight(now.Add(-2*halfLife), now, halfLife), 1e-9)

	// Future timestamps never get extra weight.
	assert.Equal(t, 1.0, RecencyWeight(now.Add(time.Hour), now, halfLife))
}

func TestRecencyWeightDefaultsHalfLife(t *testing.T) {
	now := time.Now()
	weight := RecencyWeight(now.Add(-DefaultHalfLife), now, 0)
	assert.InDelta(t, 0.5, weight, 1e-9)
}
