// internal/models/profile.go
package models

import "time"

// Confidence marks how reliable an extracted field is. Downstream scoring
// must tolerate low-confidence fields without failing.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ConfidenceSet maps field names to their extraction confidence.
type ConfidenceSet map[string]Confidence

// LowConfidenceFields returns the names of all fields marked low, sorted order
// is not guaranteed.
func (c ConfidenceSet) LowConfidenceFields() []string {
	var out []string
	for field, conf := range c {
		if conf == ConfidenceLow {
			out = append(out, field)
		}
	}
	return out
}

// HasLowConfidence reports whether any extracted field is marked low.
func (c ConfidenceSet) HasLowConfidence() bool {
	for _, conf := range c {
		if conf == ConfidenceLow {
			return true
		}
	}
	return false
}

// SeniorityLevel is an ordinal scale from junior to principal.
type SeniorityLevel int

const (
	SeniorityJunior SeniorityLevel = iota
	SeniorityMid
	SenioritySenior
	SeniorityLead
	SeniorityPrincipal
)

var seniorityNames = map[SeniorityLevel]string{
	SeniorityJunior:    "junior",
	SeniorityMid:       "mid",
	SenioritySenior:    "senior",
	SeniorityLead:      "lead",
	SeniorityPrincipal: "principal",
}

func (s SeniorityLevel) String() string {
	if name, ok := seniorityNames[s]; ok {
		return name
	}
	return "junior"
}

// ParseSeniority maps a label to its level. Unknown labels map to junior
// with ok=false so callers can flag low confidence.
func ParseSeniority(label string) (SeniorityLevel, bool) {
	for level, name := range seniorityNames {
		if name == label {
			return level, true
		}
	}
	return SeniorityJunior, false
}

// EducationLevel is an ordinal scale of highest completed education.
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationHighSchool
	EducationAssociate
	EducationBachelor
	EducationMaster
	EducationDoctorate
)

var educationNames = map[EducationLevel]string{
	EducationNone:       "none",
	EducationHighSchool: "high_school",
	EducationAssociate:  "associate",
	EducationBachelor:   "bachelor",
	EducationMaster:     "master",
	EducationDoctorate:  "doctorate",
}

func (e EducationLevel) String() string {
	if name, ok := educationNames[e]; ok {
		return name
	}
	return "none"
}

func ParseEducation(label string) (EducationLevel, bool) {
	for level, name := range educationNames {
		if name == label {
			return level, true
		}
	}
	return EducationNone, false
}

// CandidateProfile is the structured view of a candidate's documents.
// Immutable once produced for a scoring pass; re-extraction supersedes it.
type CandidateProfile struct {
	CandidateID       string          `json:"candidateId"`
	Skills            []string        `json:"skills"`
	SkillMentions     map[string]int  `json:"skillMentions,omitempty"`
	RecentSkills      map[string]bool `json:"recentSkills,omitempty"`
	YearsExperience   float64         `json:"yearsExperience"`
	Seniority         SeniorityLevel  `json:"seniority"`
	Education         EducationLevel  `json:"education"`
	Industries        []string        `json:"industries"`
	LastRoleEnd       *time.Time      `json:"lastRoleEnd,omitempty"`
	CurrentlyEmployed bool            `json:"currentlyEmployed"`
	ResumeText        string          `json:"-"`
	Confidence        ConfidenceSet   `json:"confidence"`
}

// HasSkill reports whether the candidate lists the skill (case-normalized
// by the extractor, so lookups are exact).
func (p *CandidateProfile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
