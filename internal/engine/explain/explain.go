// internal/engine/explain/explain.go

// Package explain turns component scores into the user-facing strengths,
// gaps, and recommendations attached to every match result. Output is
// deterministic: same scores, same statements, same order.
package explain

import (
	"fmt"

	"match-engine/internal/models"
)

// Score bands for explanation statements. Components scoring between the
// two produce no statement.
const (
	StrengthFloor = 0.80
	GapCeiling    = 0.50
)

var strengthTemplates = map[string]string{
	models.ComponentSkillDepth:          "strong coverage of the required skills",
	models.ComponentExperienceRelevance: "experience level squarely matches what the role asks for",
	models.ComponentSeniorityMatch:      "seniority aligns with the role",
	models.ComponentIndustryFit:         "background in the same industry as the employer",
	models.ComponentEducationMatch:      "education meets the stated requirement",
	models.ComponentKeywordDensity:      "resume speaks the language of the job posting",
	models.ComponentRecency:             "recent, current experience in the field",
}

var gapTemplates = map[string]string{
	models.ComponentSkillDepth:          "several required skills are missing or only briefly mentioned",
	models.ComponentExperienceRelevance: "years of experience fall outside the role's stated range",
	models.ComponentSeniorityMatch:      "seniority level differs notably from the role",
	models.ComponentIndustryFit:         "little background in the employer's industry",
	models.ComponentEducationMatch:      "education falls short of the stated requirement",
	models.ComponentKeywordDensity:      "resume shares little vocabulary with the job posting",
	models.ComponentRecency:             "most recent relevant experience is not current",
}

var recommendationTemplates = map[string]string{
	models.ComponentSkillDepth:          "Highlight hands-on work with the required skills, or close the gap with a project or certification.",
	models.ComponentExperienceRelevance: "Emphasize the depth and relevance of your experience rather than raw years.",
	models.ComponentSeniorityMatch:      "Frame your accomplishments at the level the role is pitched at.",
	models.ComponentIndustryFit:         "Call out any transferable domain exposure, client work, or adjacent-industry projects.",
	models.ComponentEducationMatch:      "List relevant coursework, certifications, or equivalent practical experience.",
	models.ComponentKeywordDensity:      "Mirror the posting's terminology where it honestly describes your work.",
	models.ComponentRecency:             "Lead with your most recent relevant work, including ongoing side projects.",
}

// Explanation is the human-readable breakdown of one match.
type Explanation struct {
	Strengths       []string
	Gaps            []string
	Recommendations []string
}

// Generate produces statements in canonical component order. Components
// with mid-band scores are silent; recommendations exist only for gaps.
func Generate(scores models.ComponentScores) Explanation {
	var out Explanation
	for _, name := range models.ComponentOrder {
		score := scores.Get(name)
		switch {
		case score >= StrengthFloor:
			out.Strengths = append(out.Strengths, statement(strengthTemplates, name, score))
		case score < GapCeiling:
			out.Gaps = append(out.Gaps, statement(gapTemplates, name, score))
			out.Recommendations = append(out.Recommendations, recommendationTemplates[name])
		}
	}
	return out
}

func statement(templates map[string]string, name string, score float64) string {
	return fmt.Sprintf("%s (%.0f%%)", templates[name], score*100)
}
