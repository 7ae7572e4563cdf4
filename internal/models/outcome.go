// internal/models/outcome.go
package models

import "time"

// Outcome is the observed real-world result of an application, on the
// 0.0-1.0 training label scale.
type Outcome float64

const (
	OutcomeRejected  Outcome = 0.0
	OutcomeInterview Outcome = 0.5
	OutcomeOffer     Outcome = 1.0
)

var outcomeNames = map[string]Outcome{
	"rejected":  OutcomeRejected,
	"interview": OutcomeInterview,
	"offer":     OutcomeOffer,
}

// ParseOutcome maps the feedback enum to its label value.
func ParseOutcome(label string) (Outcome, bool) {
	o, ok := outcomeNames[label]
	return o, ok
}

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeInterview:
		return "interview"
	case OutcomeOffer:
		return "offer"
	}
	return "unknown"
}

// ApplicationState tracks the lifecycle of a match that was surfaced to a
// user and applied to.
type ApplicationState string

const (
	StateScored          ApplicationState = "scored"
	StateApplied         ApplicationState = "applied"
	StateOutcomePending  ApplicationState = "outcome_pending"
	StateOutcomeRecorded ApplicationState = "outcome_recorded"
)

var stateTransitions = map[ApplicationState]ApplicationState{
	StateScored:         StateApplied,
	StateApplied:        StateOutcomePending,
	StateOutcomePending: StateOutcomeRecorded,
}

// CanTransition reports whether the state machine allows moving from to
// next. Only forward single-step transitions are legal.
func CanTransition(from, next ApplicationState) bool {
	return stateTransitions[from] == next
}

// OutcomeRecord is one append-only entry in the training log. Never
// mutated; never touches the originating MatchResult.
type OutcomeRecord struct {
	ID            string    `json:"id"`
	MatchResultID string    `json:"matchResultId"`
	Outcome       Outcome   `json:"outcome"`
	ObservedAt    time.Time `json:"observedAt"`
	RecencyWeight float64   `json:"recencyWeight"`
}
