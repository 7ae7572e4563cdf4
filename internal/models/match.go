// internal/models/match.go
package models

import "time"

// TierDecision is the Threshold Filter verdict for one (probability, tier)
// pair. Exactly one of the three values is produced for every pair.
type TierDecision string

const (
	DecisionPass          TierDecision = "pass"
	DecisionFail          TierDecision = "fail"
	DecisionPendingReview TierDecision = "pass_pending_review"
)

// Result flags. Anything encountered per-(candidate,job) degrades the
// result via a flag; it never aborts the batch.
const (
	FlagLowConfidence      = "low_confidence"
	FlagModelUnavailable   = "model_unavailable"
	FlagExtractionDegraded = "extraction_degraded"
)

// MatchResult is the output of one full scoring pass. Never mutated; a
// re-score produces a new result with a new ID.
type MatchResult struct {
	ID              string                            `json:"id"`
	CandidateID     string                            `json:"candidateId"`
	JobID           string                            `json:"jobId"`
	Scores          ComponentScores                   `json:"scores"`
	RawScore        float64                           `json:"rawScore"`
	Probability     float64                           `json:"probability"` // 0-100
	ModelVersion    string                            `json:"modelVersion"`
	Tier            SubscriptionTier                  `json:"tier"`
	Decision        TierDecision                      `json:"decision"`
	TierOutcomes    map[SubscriptionTier]TierDecision `json:"tierOutcomes"`
	Strengths       []string                          `json:"strengths"`
	Gaps            []string                          `json:"gaps"`
	Recommendations []string                          `json:"recommendations"`
	Flags           []string                          `json:"flags,omitempty"`
	CreatedAt       time.Time                         `json:"createdAt"`
}

// HasFlag reports whether the result carries the given flag.
func (m *MatchResult) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends the flag if not already present.
func (m *MatchResult) AddFlag(flag string) {
	if !m.HasFlag(flag) {
		m.Flags = append(m.Flags, flag)
	}
}
