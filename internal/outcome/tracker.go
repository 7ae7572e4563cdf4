// internal/outcome/tracker.go
package outcome

import (
	"context"
	"time"

	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/internal/training/features"
)

// Tracker validates and applies outcome feedback. It owns the state
// machine rules; the Store owns persistence.
type Tracker struct {
	store    *Store
	halfLife time.Duration
	log      logger.Logger
	now      func() time.Time
}

func NewTracker(store *Store, halfLifeDays int, log logger.Logger) *Tracker {
	halfLife := time.Duration(halfLifeDays) * 24 * time.Hour
	if halfLife <= 0 {
		halfLife = features.DefaultHalfLife
	}
	return &Tracker{store: store, halfLife: halfLife, log: log, now: time.Now}
}

// MarkApplied advances a scored match to applied and then outcome_pending.
// The two hops happen together because applying immediately opens the
// outcome window. A match found already applied resumes at the second hop,
// so a retry after a failure between the hops completes instead of
// wedging the match in applied.
func (t *Tracker) MarkApplied(ctx context.Context, matchResultID string) error {
	state, err := t.store.LifecycleState(ctx, matchResultID)
	if err != nil {
		return err
	}
	if state != models.StateApplied {
		if err := t.advance(ctx, matchResultID, state, models.StateApplied); err != nil {
			return err
		}
	}
	return t.advance(ctx, matchResultID, models.StateApplied, models.StateOutcomePending)
}

// RecordOutcome appends the outcome and closes the lifecycle. The record
// is written first; a lost race on the state update leaves an extra
// append-only record, never a missing one.
func (t *Tracker) RecordOutcome(ctx context.Context, matchResultID string, outcome models.Outcome) (*models.OutcomeRecord, error) {
	state, err := t.store.LifecycleState(ctx, matchResultID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(matchResultID, state, models.StateOutcomeRecorded); err != nil {
		return nil, err
	}

	observedAt := t.now().UTC()
	record := &models.OutcomeRecord{
		MatchResultID: matchResultID,
		Outcome:       outcome,
		ObservedAt:    observedAt,
		RecencyWeight: features.RecencyWeight(observedAt, observedAt, t.halfLife),
	}
	if err := t.store.AppendRecord(ctx, record); err != nil {
		return nil, err
	}

	if err := t.store.AdvanceState(ctx, matchResultID, state, models.StateOutcomeRecorded); err != nil {
		return nil, err
	}

	metrics.OutcomesRecorded.WithLabelValues(outcome.String()).Inc()
	t.log.Info("outcome recorded", map[string]interface{}{
		"matchResultId": matchResultID,
		"outcome":       outcome.String(),
	})
	return record, nil
}

func (t *Tracker) advance(ctx context.Context, matchResultID string, from, next models.ApplicationState) error {
	if err := checkTransition(matchResultID, from, next); err != nil {
		return err
	}
	return t.store.AdvanceState(ctx, matchResultID, from, next)
}

func checkTransition(matchResultID string, from, next models.ApplicationState) error {
	if !models.CanTransition(from, next) {
		return errors.NewOutcomeIllegalStateError(matchResultID, string(from), string(next))
	}
	return nil
}
