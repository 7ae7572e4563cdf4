// internal/models/scores.go
package models

// Component names, in canonical weight order.
const (
	ComponentSkillDepth          = "skillDepth"
	ComponentExperienceRelevance = "experienceRelevance"
	ComponentSeniorityMatch      = "seniorityMatch"
	ComponentIndustryFit         = "industryFit"
	ComponentEducationMatch      = "educationMatch"
	ComponentKeywordDensity      = "keywordDensity"
	ComponentRecency             = "recency"
)

// ComponentOrder fixes the canonical ordering used by weights and feature
// vectors.
var ComponentOrder = []string{
	ComponentSkillDepth,
	ComponentExperienceRelevance,
	ComponentSeniorityMatch,
	ComponentIndustryFit,
	ComponentEducationMatch,
	ComponentKeywordDensity,
	ComponentRecency,
}

// NeutralScore is substituted when an input needed by a component is
// missing; the result is flagged low-confidence instead of failing.
const NeutralScore = 0.5

// ComponentScores holds the seven normalized sub-scores, each in [0,1].
type ComponentScores struct {
	SkillDepth          float64 `json:"skillDepth"`
	ExperienceRelevance float64 `json:"experienceRelevance"`
	SeniorityMatch      float64 `json:"seniorityMatch"`
	IndustryFit         float64 `json:"industryFit"`
	EducationMatch      float64 `json:"educationMatch"`
	KeywordDensity      float64 `json:"keywordDensity"`
	Recency             float64 `json:"recency"`
}

// AsVector returns the scores in canonical component order.
func (s ComponentScores) AsVector() []float64 {
	return []float64{
		s.SkillDepth,
		s.ExperienceRelevance,
		s.SeniorityMatch,
		s.IndustryFit,
		s.EducationMatch,
		s.KeywordDensity,
		s.Recency,
	}
}

// Get returns the named component score.
func (s ComponentScores) Get(name string) float64 {
	switch name {
	case ComponentSkillDepth:
		return s.SkillDepth
	case ComponentExperienceRelevance:
		return s.ExperienceRelevance
	case ComponentSeniorityMatch:
		return s.SeniorityMatch
	case ComponentIndustryFit:
		return s.IndustryFit
	case ComponentEducationMatch:
		return s.EducationMatch
	case ComponentKeywordDensity:
		return s.KeywordDensity
	case ComponentRecency:
		return s.Recency
	}
	return 0
}

// InRange reports whether every sub-score lies in [0,1].
func (s ComponentScores) InRange() bool {
	for _, v := range s.AsVector() {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
