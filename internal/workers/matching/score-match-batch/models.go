// internal/workers/matching/score-match-batch/models.go
package scorematchbatch

import "match-engine/internal/models"

type JobPosting struct {
	JobID       string `json:"jobId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Input struct {
	CandidateID string       `json:"candidateId"`
	ResumeText  string       `json:"resumeText"`
	CoverLetter string       `json:"coverLetter,omitempty"`
	Tier        string       `json:"tier"`
	Jobs        []JobPosting `json:"jobs"`
}

// Match is the per-job slice of the batch output, ranked by probability.
type Match struct {
	MatchResultID   string                                          `json:"matchResultId"`
	JobID           string                                          `json:"jobId"`
	Probability     float64                                         `json:"probability"`
	Decision        models.TierDecision                             `json:"decision"`
	TierOutcomes    map[models.SubscriptionTier]models.TierDecision `json:"tierOutcomes"`
	Scores          models.ComponentScores                          `json:"scores"`
	ModelVersion    string                                          `json:"modelVersion"`
	Strengths       []string                                        `json:"strengths"`
	Gaps            []string                                        `json:"gaps"`
	Recommendations []string                                        `json:"recommendations"`
	Flags           []string                                        `json:"flags,omitempty"`
}

type Output struct {
	CandidateID string  `json:"candidateId"`
	Tier        string  `json:"tier"`
	Matches     []Match `json:"matches"`
	ScoredCount int     `json:"scoredCount"`
	FailedCount int     `json:"failedCount"`
}
