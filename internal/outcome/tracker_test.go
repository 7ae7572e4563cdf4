// internal/outcome/tracker_test.go
package outcome

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/database"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

func newTestTracker(t *testing.T) (*Tracker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(&database.PostgresClient{DB: db})
	tracker := NewTracker(store, 180, logger.NewNoOpLogger())
	tracker.now = func() time.Time {
		return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	}
	return tracker, mock
}

func expectState(mock sqlmock.Sqlmock, state models.ApplicationState) {
	mock.ExpectQuery(`SELECT state FROM match_lifecycle`).
		WithArgs("match-1").
		WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow(string(state)))
}

func TestRecordOutcomeHappyPath(t *testing.T) {
	tracker, mock := newTestTracker(t)

	expectState(mock, models.StateOutcomePending)
	mock.ExpectExec(`INSERT INTO outcome_records`).
		WithArgs(sqlmock.AnyArg(), "match-1", 0.5, sqlmock.AnyArg(), 1.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WithArgs(string(models.StateOutcomeRecorded), "match-1", string(models.StateOutcomePending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := tracker.RecordOutcome(context.Background(), "match-1", models.OutcomeInterview)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.OutcomeInterview, record.Outcome)
	assert.Equal(t, 1.0, record.RecencyWeight, "a fresh outcome carries full weight")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeUnknownMatch(t *testing.T) {
	tracker, mock := newTestTracker(t)

	mock.ExpectQuery(`SELECT state FROM match_lifecycle`).
		WithArgs("match-1").
		WillReturnRows(sqlmock.NewRows([]string{"state"}))

	_, err := tracker.RecordOutcome(context.Background(), "match-1", models.OutcomeOffer)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOutcomeUnknownMatch))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeRejectsIllegalState(t *testing.T) {
	tracker, mock := newTestTracker(t)

	// Still scored: the candidate never applied, no outcome is legal yet.
	expectState(mock, models.StateScored)

	_, err := tracker.RecordOutcome(context.Background(), "match-1", models.OutcomeRejected)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOutcomeIllegalState))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeRejectsDoubleRecording(t *testing.T) {
	tracker, mock := newTestTracker(t)

	expectState(mock, models.StateOutcomeRecorded)

	_, err := tracker.RecordOutcome(context.Background(), "match-1", models.OutcomeOffer)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOutcomeIllegalState))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeLosesStateRace(t *testing.T) {
	tracker, mock := newTestTracker(t)

	expectState(mock, models.StateOutcomePending)
	mock.ExpectExec(`INSERT INTO outcome_records`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Another writer advanced the state first; zero rows updated.
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := tracker.RecordOutcome(context.Background(), "match-1", models.OutcomeOffer)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOutcomeIllegalState))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAppliedAdvancesTwoSteps(t *testing.T) {
	tracker, mock := newTestTracker(t)

	expectState(mock, models.StateScored)
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WithArgs(string(models.StateApplied), "match-1", string(models.StateScored)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WithArgs(string(models.StateOutcomePending), "match-1", string(models.StateApplied)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, tracker.MarkApplied(context.Background(), "match-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAppliedRetryResumesAfterPartialFailure(t *testing.T) {
	tracker, mock := newTestTracker(t)

	// First attempt: scored→applied lands, applied→outcome_pending dies
	// mid-flight.
	expectState(mock, models.StateScored)
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WithArgs(string(models.StateApplied), "match-1", string(models.StateScored)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WithArgs(string(models.StateOutcomePending), "match-1", string(models.StateApplied)).
		WillReturnError(fmt.Errorf("connection reset"))

	err := tracker.MarkApplied(context.Background(), "match-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryExecutionFailed))

	// Retry: the match is already applied, so only the second hop runs.
	expectState(mock, models.StateApplied)
	mock.ExpectExec(`UPDATE match_lifecycle SET state`).
		WithArgs(string(models.StateOutcomePending), "match-1", string(models.StateApplied)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, tracker.MarkApplied(context.Background(), "match-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAppliedRejectsAlreadyApplied(t *testing.T) {
	tracker, mock := newTestTracker(t)

	expectState(mock, models.StateOutcomePending)

	err := tracker.MarkApplied(context.Background(), "match-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOutcomeIllegalState))
	require.NoError(t, mock.ExpectationsWereMet())
}
