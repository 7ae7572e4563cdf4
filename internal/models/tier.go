// internal/models/tier.go
package models

// SubscriptionTier identifies a subscription plan. Tiers are ordered from
// Freemium (most restrictive threshold) to Elite.
type SubscriptionTier string

const (
	TierFreemium     SubscriptionTier = "freemium"
	TierStarter      SubscriptionTier = "starter"
	TierBasic        SubscriptionTier = "basic"
	TierProfessional SubscriptionTier = "professional"
	TierPremium      SubscriptionTier = "premium"
	TierElite        SubscriptionTier = "elite"
)

// TierOrder lists tiers from most to least restrictive.
var TierOrder = []SubscriptionTier{
	TierFreemium,
	TierStarter,
	TierBasic,
	TierProfessional,
	TierPremium,
	TierElite,
}

// ValidTier reports whether the tier label is recognized.
func ValidTier(t SubscriptionTier) bool {
	for _, known := range TierOrder {
		if known == t {
			return true
		}
	}
	return false
}

// HasReviewQueue reports whether near-threshold matches for the tier are
// routed to human review instead of auto-pass/fail.
func (t SubscriptionTier) HasReviewQueue() bool {
	return t == TierPremium || t == TierElite
}
