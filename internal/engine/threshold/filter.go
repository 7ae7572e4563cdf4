// internal/engine/threshold/filter.go

// Package threshold applies per-tier probability cutoffs to a calculated
// match. Pure decision logic with no I/O.
package threshold

import (
	"match-engine/internal/common/config"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
)

// Filter decides pass, fail, or pending-review per subscription tier.
type Filter struct {
	tiers config.TiersConfig
}

func New(tiers config.TiersConfig) *Filter {
	return &Filter{tiers: tiers}
}

// Decide returns the verdict for one probability under one tier. Total
// over valid tiers: every (probability, tier) pair yields exactly one of
// the three decisions. Unknown tiers fail closed.
func (f *Filter) Decide(probability float64, tier models.SubscriptionTier) models.TierDecision {
	threshold, ok := f.tiers.Threshold(tier)
	if !ok {
		return models.DecisionFail
	}

	if tier.HasReviewQueue() {
		margin := f.tiers.ReviewMargin
		if probability >= threshold-margin && probability < threshold+margin {
			return models.DecisionPendingReview
		}
	}

	if probability >= threshold {
		return models.DecisionPass
	}
	return models.DecisionFail
}

// Apply stamps the decision for the requesting tier onto the result and
// records the verdicts every tier would have produced, so downstream
// consumers can explain upgrade impact.
func (f *Filter) Apply(result *models.MatchResult, tier models.SubscriptionTier) {
	result.Tier = tier
	result.Decision = f.Decide(result.Probability, tier)

	result.TierOutcomes = make(map[models.SubscriptionTier]models.TierDecision, len(models.TierOrder))
	for _, t := range models.TierOrder {
		result.TierOutcomes[t] = f.Decide(result.Probability, t)
	}

	metrics.TierDecisions.WithLabelValues(string(tier), string(result.Decision)).Inc()
}
