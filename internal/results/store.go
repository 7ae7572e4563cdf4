// internal/results/store.go

// Package results persists immutable match results and serves them back
// to the trainer joined with their recorded outcomes.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"match-engine/internal/common/database"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// Store writes match results to Postgres and keeps a short-lived Redis
// copy for acknowledgement lookups.
type Store struct {
	db       *database.PostgresClient
	cache    *database.RedisClient
	cacheTTL time.Duration
	log      logger.Logger
}

func NewStore(db *database.PostgresClient, cache *database.RedisClient, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{db: db, cache: cache, cacheTTL: cacheTTL, log: log}
}

// Insert writes one immutable result row. featureVector is the training
// vector computed at scoring time; the trainer reads it back verbatim so
// offline training never re-derives features.
func (s *Store) Insert(ctx context.Context, result *models.MatchResult, featureVector []float64) error {
	scoresJSON, err := json.Marshal(result.Scores)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("match_results", err)
	}
	vectorJSON, err := json.Marshal(featureVector)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("match_results", err)
	}
	outcomesJSON, err := json.Marshal(result.TierOutcomes)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("match_results", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO match_results
		 (id, candidate_id, job_id, scores, raw_score, probability, model_version,
		  tier, decision, tier_outcomes, strengths, gaps, recommendations, flags,
		  feature_vector, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		result.ID, result.CandidateID, result.JobID, scoresJSON, result.RawScore,
		result.Probability, result.ModelVersion, string(result.Tier), string(result.Decision),
		outcomesJSON, pq.Array(result.Strengths), pq.Array(result.Gaps),
		pq.Array(result.Recommendations), pq.Array(result.Flags), vectorJSON, result.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("match_results", err)
	}

	s.cacheResult(ctx, result)
	return nil
}

// Exists reports whether the match was ever scored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM match_results WHERE id = $1)`, id,
	).Scan(&found)
	if err != nil {
		return false, errors.NewQueryExecutionFailedError("match exists", err)
	}
	return found, nil
}

// TrainingExample is one labelled row for the trainer: the feature vector
// stored at scoring time plus the observed outcome.
type TrainingExample struct {
	Features   []float64
	Label      float64
	ObservedAt time.Time
}

// TrainingExamples loads every recorded outcome joined with its match's
// stored feature vector, oldest first.
func (s *Store) TrainingExamples(ctx context.Context) ([]TrainingExample, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.feature_vector, o.outcome, o.observed_at
		 FROM outcome_records o
		 JOIN match_results m ON m.id = o.match_result_id
		 ORDER BY o.observed_at ASC`,
	)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load training examples", err)
	}
	defer rows.Close()

	var examples []TrainingExample
	for rows.Next() {
		var (
			vectorJSON []byte
			label      float64
			observedAt time.Time
		)
		if err := rows.Scan(&vectorJSON, &label, &observedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan training example", err)
		}

		var vec []float64
		if err := json.Unmarshal(vectorJSON, &vec); err != nil {
			s.log.Warn("skipping training example with malformed feature vector", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		examples = append(examples, TrainingExample{Features: vec, Label: label, ObservedAt: observedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("load training examples", err)
	}
	return examples, nil
}

// Cached returns the cached copy of a recent result, or nil on any miss.
func (s *Store) Cached(ctx context.Context, id string) *models.MatchResult {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, resultKey(id))
	if err != nil {
		return nil
	}
	var result models.MatchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

func (s *Store) cacheResult(ctx context.Context, result *models.MatchResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, resultKey(result.ID), raw, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache match result", map[string]interface{}{
			"matchResultId": result.ID,
			"error":         err.Error(),
		})
	}
}

func resultKey(id string) string {
	return fmt.Sprintf("match:result:%s", id)
}
