// internal/training/trainer/store.go
package trainer

import (
	"context"
	"database/sql"
	"encoding/json"

	"match-engine/internal/common/database"
	"match-engine/internal/common/errors"
	"match-engine/internal/models"
)

// ArtifactStore persists versioned ensemble bundles. Rows are immutable;
// publishing marks exactly one row current.
type ArtifactStore struct {
	db *database.PostgresClient
}

func NewArtifactStore(db *database.PostgresClient) *ArtifactStore {
	return &ArtifactStore{db: db}
}

// Save inserts the artifact and flips the current pointer to it in one
// transaction.
func (s *ArtifactStore) Save(ctx context.Context, artifact *models.EnsembleArtifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("model_artifacts", err)
	}

	tx, err := s.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("model_artifacts", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE model_artifacts SET is_current = FALSE WHERE is_current`,
	); err != nil {
		return errors.NewDatabaseInsertFailedError("model_artifacts", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO model_artifacts (version, trained_at, sample_count, payload, is_current)
		 VALUES ($1, $2, $3, $4, TRUE)`,
		artifact.Version, artifact.TrainedAt, artifact.SampleCount, payload,
	); err != nil {
		return errors.NewDatabaseInsertFailedError("model_artifacts", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseInsertFailedError("model_artifacts", err)
	}
	return nil
}

// LoadCurrent returns the published artifact, or nil when none exists
// yet (cold start).
func (s *ArtifactStore) LoadCurrent(ctx context.Context) (*models.EnsembleArtifact, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT payload FROM model_artifacts WHERE is_current LIMIT 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load current artifact", err)
	}

	var artifact models.EnsembleArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, errors.NewModelUnavailableError("stored artifact is not valid JSON: " + err.Error())
	}
	return &artifact, nil
}
