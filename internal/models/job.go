// internal/models/job.go
package models

// JobRequirement is the structured view of one job posting version.
// Immutable per posting version.
type JobRequirement struct {
	JobID              string         `json:"jobId"`
	Title              string         `json:"title,omitempty"`
	RequiredSkills     []string       `json:"requiredSkills"`
	PreferredSkills    []string       `json:"preferredSkills"`
	MinYears           float64        `json:"minYears"`
	MaxYears           float64        `json:"maxYears"`
	Seniority          SeniorityLevel `json:"seniority"`
	RequiredEducation  EducationLevel `json:"requiredEducation"`
	PreferredEducation EducationLevel `json:"preferredEducation"`
	Industries         []string       `json:"industries"`
	Description        string         `json:"description"`
	Confidence         ConfidenceSet  `json:"confidence"`
}

// TargetsIndustry reports whether the posting targets the given industry.
func (j *JobRequirement) TargetsIndustry(industry string) bool {
	for _, ind := range j.Industries {
		if ind == industry {
			return true
		}
	}
	return false
}
