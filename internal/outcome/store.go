// internal/outcome/store.go

// Package outcome records real-world application results against stored
// matches and maintains the per-match lifecycle state machine. Outcome
// records are append-only; nothing here ever touches a stored
// MatchResult.
package outcome

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"match-engine/internal/common/database"
	"match-engine/internal/common/errors"
	"match-engine/internal/models"
)

// Store persists lifecycle state and outcome records in Postgres.
type Store struct {
	db *database.PostgresClient
}

func NewStore(db *database.PostgresClient) *Store {
	return &Store{db: db}
}

// LifecycleState loads the current application state for a match.
// Returns OutcomeUnknownMatch when the match was never scored.
func (s *Store) LifecycleState(ctx context.Context, matchResultID string) (models.ApplicationState, error) {
	var state string
	err := s.db.QueryRow(ctx,
		`SELECT state FROM match_lifecycle WHERE match_result_id = $1`,
		matchResultID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return "", errors.NewOutcomeUnknownMatchError(matchResultID)
	}
	if err != nil {
		return "", errors.NewQueryExecutionFailedError("load lifecycle state", err)
	}
	return models.ApplicationState(state), nil
}

// InitLifecycle creates the lifecycle row for a freshly scored match.
func (s *Store) InitLifecycle(ctx context.Context, matchResultID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO match_lifecycle (match_result_id, state, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (match_result_id) DO NOTHING`,
		matchResultID, string(models.StateScored),
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("match_lifecycle", err)
	}
	return nil
}

// AdvanceState moves the lifecycle forward one step. The WHERE clause on
// the current state makes concurrent transitions race-safe: only one
// writer wins, the other sees zero rows and reloads.
func (s *Store) AdvanceState(ctx context.Context, matchResultID string, from, next models.ApplicationState) error {
	res, err := s.db.Exec(ctx,
		`UPDATE match_lifecycle SET state = $1, updated_at = NOW()
		 WHERE match_result_id = $2 AND state = $3`,
		string(next), matchResultID, string(from),
	)
	if err != nil {
		return errors.NewQueryExecutionFailedError("advance lifecycle state", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("advance lifecycle state", err)
	}
	if affected == 0 {
		return errors.NewOutcomeIllegalStateError(matchResultID, string(from), string(next))
	}
	return nil
}

// AppendRecord inserts one immutable outcome record.
func (s *Store) AppendRecord(ctx context.Context, record *models.OutcomeRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO outcome_records (id, match_result_id, outcome, observed_at, recency_weight)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.MatchResultID, float64(record.Outcome), record.ObservedAt, record.RecencyWeight,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("outcome_records", err)
	}
	return nil
}
