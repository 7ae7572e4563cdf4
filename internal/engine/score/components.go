// internal/engine/score/components.go

// Package score computes the seven normalized component scores comparing a
// candidate profile against a job requirement. Every function here is a
// pure function of its inputs: the same (profile, job, now) always yields
// the same scores. Missing inputs score neutral (0.5) and are reported as
// low-confidence components instead of failing.
package score

import (
	"math"
	"time"

	"match-engine/internal/engine/extract"
	"match-engine/internal/models"
)

// Compute returns all seven component scores plus the names of components
// that fell back to the neutral default for lack of input.
func Compute(profile *models.CandidateProfile, job *models.JobRequirement, now time.Time) (models.ComponentScores, []string) {
	var low []string

	record := func(name string, score float64, neutral bool) float64 {
		if neutral {
			low = append(low, name)
		}
		return clamp(score)
	}

	skillDepth, skillNeutral := SkillDepth(profile, job)
	expRel, expNeutral := ExperienceRelevance(profile, job)
	senMatch, senNeutral := SeniorityMatch(profile, job)
	indFit, indNeutral := IndustryFit(profile, job)
	eduMatch, eduNeutral := EducationMatch(profile, job)
	kwDensity, kwNeutral := KeywordDensity(profile, job)
	recency, recNeutral := Recency(profile, now)

	scores := models.ComponentScores{
		SkillDepth:          record(models.ComponentSkillDepth, skillDepth, skillNeutral),
		ExperienceRelevance: record(models.ComponentExperienceRelevance, expRel, expNeutral),
		SeniorityMatch:      record(models.ComponentSeniorityMatch, senMatch, senNeutral),
		IndustryFit:         record(models.ComponentIndustryFit, indFit, indNeutral),
		EducationMatch:      record(models.ComponentEducationMatch, eduMatch, eduNeutral),
		KeywordDensity:      record(models.ComponentKeywordDensity, kwDensity, kwNeutral),
		Recency:             record(models.ComponentRecency, recency, recNeutral),
	}

	return scores, low
}

// SkillDepth scores the weighted overlap of candidate skills against the
// job's required and preferred skills. Required matches count double, and
// a skill with evidence of recent, repeated use outscores a bare mention.
func SkillDepth(profile *models.CandidateProfile, job *models.JobRequirement) (float64, bool) {
	nReq := len(job.RequiredSkills)
	nPref := len(job.PreferredSkills)
	if nReq+nPref == 0 {
		return models.NeutralScore, true
	}

	var got, total float64
	for _, skill := range job.RequiredSkills {
		got += 2.0 * skillCredit(profile, skill)
		total += 2.0
	}
	for _, skill := range job.PreferredSkills {
		got += skillCredit(profile, skill)
		total += 1.0
	}

	return got / total, false
}

// skillCredit grades one skill match: 0 if absent, 0.7 for a bare
// mention, up to 1.0 with repeated and recent use.
func skillCredit(profile *models.CandidateProfile, skill string) float64 {
	if !profile.HasSkill(skill) {
		return 0
	}
	credit := 0.7
	if profile.SkillMentions[skill] >= 2 {
		credit += 0.15
	}
	if profile.RecentSkills[skill] {
		credit += 0.15
	}
	return credit
}

// ExperienceRelevance is a unimodal fit curve over the job's [min, max]
// experience range: 1.0 inside the range, falling off outside it, with
// under-experience penalized more steeply than modest over-experience.
func ExperienceRelevance(profile *models.CandidateProfile, job *models.JobRequirement) (float64, bool) {
	if job.MinYears == 0 && job.MaxYears == 0 {
		return models.NeutralScore, true
	}
	if profile.Confidence[extract.FieldExperience] == models.ConfidenceLow && profile.YearsExperience == 0 {
		return models.NeutralScore, true
	}

	years := profile.YearsExperience
	switch {
	case years >= job.MinYears && years <= job.MaxYears:
		return 1.0, false
	case years < job.MinYears:
		deficit := job.MinYears - years
		return math.Max(0, 1.0-0.30*deficit), false
	default:
		surplus := years - job.MaxYears
		return math.Max(0.25, 1.0-0.08*surplus), false
	}
}

// seniorityScores grades the ordinal distance between candidate and
// required level: exact match 1.0, one level off 0.7, approaching 0 from
// two levels out.
var seniorityScores = []float64{1.0, 0.7, 0.4, 0.15, 0.0}

func SeniorityMatch(profile *models.CandidateProfile, job *models.JobRequirement) (float64, bool) {
	if profile.Confidence[extract.FieldSeniority] == models.ConfidenceLow &&
		job.Confidence[extract.FieldSeniority] == models.ConfidenceLow {
		return models.NeutralScore, true
	}

	dist := int(profile.Seniority) - int(job.Seniority)
	if dist < 0 {
		dist = -dist
	}
	if dist >= len(seniorityScores) {
		dist = len(seniorityScores) - 1
	}
	return seniorityScores[dist], false
}

// IndustryFit is 1.0 on any exact industry match, partial credit for an
// adjacent industry, 0 otherwise.
func IndustryFit(profile *models.CandidateProfile, job *models.JobRequirement) (float64, bool) {
	if len(profile.Industries) == 0 || len(job.Industries) == 0 {
		return models.NeutralScore, true
	}

	best := 0.0
	for _, candidate := range profile.Industries {
		for _, target := range job.Industries {
			switch {
			case candidate == target:
				return 1.0, false
			case extract.AdjacentIndustries(candidate, target):
				if best < 0.6 {
					best = 0.6
				}
			}
		}
	}
	return best, false
}

// educationShortfall grades how far below the requirement the candidate
// sits: meeting it scores 1.0, each missing level costs credit.
var educationShortfall = []float64{1.0, 0.7, 0.4, 0.2}

// preferredEducationCredit is the score when the required level is met
// but a stated preferred level above it is not.
const preferredEducationCredit = 0.9

func EducationMatch(profile *models.CandidateProfile, job *models.JobRequirement) (float64, bool) {
	if job.RequiredEducation == models.EducationNone && job.PreferredEducation == models.EducationNone {
		return 1.0, false
	}
	if profile.Confidence[extract.FieldEducation] == models.ConfidenceLow &&
		profile.Education == models.EducationNone {
		return models.NeutralScore, true
	}

	gap := int(job.RequiredEducation) - int(profile.Education)
	if gap > 0 {
		if gap >= len(educationShortfall) {
			gap = len(educationShortfall) - 1
		}
		return educationShortfall[gap], false
	}
	if job.PreferredEducation > job.RequiredEducation && profile.Education < job.PreferredEducation {
		return preferredEducationCredit, false
	}
	return 1.0, false
}

// KeywordDensity is the fraction of distinct job-description keywords
// (after stopword removal) present in the candidate's document text.
func KeywordDensity(profile *models.CandidateProfile, job *models.JobRequirement) (float64, bool) {
	jobKeywords := extract.Keywords(job.Description)
	if len(jobKeywords) == 0 || profile.ResumeText == "" {
		return models.NeutralScore, true
	}

	resumeTokens := map[string]bool{}
	for _, tok := range extract.Keywords(profile.ResumeText) {
		resumeTokens[tok] = true
	}

	matched := 0
	for _, kw := range jobKeywords {
		if resumeTokens[kw] {
			matched++
		}
	}
	return float64(matched) / float64(len(jobKeywords)), false
}

// Recency is 1.0 for a currently employed candidate, decaying with the
// size of the gap since the most recent role ended.
func Recency(profile *models.CandidateProfile, now time.Time) (float64, bool) {
	if profile.CurrentlyEmployed {
		return 1.0, false
	}
	if profile.LastRoleEnd == nil {
		return models.NeutralScore, true
	}

	gap := now.Sub(*profile.LastRoleEnd)
	months := gap.Hours() / (24 * 30)
	switch {
	case months <= 0:
		return 1.0, false
	case months <= 3:
		return 0.9, false
	case months <= 6:
		return 0.8, false
	case months <= 12:
		return 0.6, false
	case months <= 24:
		return 0.4, false
	default:
		return 0.2, false
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
