// internal/training/trainer/trainer_test.go
package trainer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
	"match-engine/internal/results"
	"match-engine/internal/training/ensemble"
)

type stubExamples struct {
	examples []results.TrainingExample
	err      error
}

func (s *stubExamples) TrainingExamples(context.Context) ([]results.TrainingExample, error) {
	return s.examples, s.err
}

type captureAlerter struct {
	subjects []string
}

func (c *captureAlerter) Notify(_ context.Context, subject, _ string) error {
	c.subjects = append(c.subjects, subject)
	return nil
}

func testTrainingConfig() config.TrainingConfig {
	return config.TrainingConfig{
		Schedule:           "0 3 1 * *",
		MinSamples:         50,
		HoldoutFraction:    0.2,
		RecencyHalfLife:    180,
		MinAccuracy:        0.55,
		MaxAccuracyDrop:    0.02,
		MaxCalibrationRise: 0.05,
	}
}

// separableExamples generates a learnable outcome log: high feature
// vectors got offers, low ones got rejected.
func separableExamples(n int) []results.TrainingExample {
	observed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []results.TrainingExample
	for i := 0; i < n; i++ {
		base := float64(i%10) / 100.0
		strong := []float64{0.7 + base, 1, 1, 1, 0.9, 0.8 + base, 1, 1, 0.9, 0.5, 1}
		weak := []float64{0.1 + base, 0, 0, 0, 0.2, 0.1 + base, 0.2, 0, 0.3, 0.1, 0.3}

		label := float64(models.OutcomeOffer)
		vec := strong
		if i%2 == 1 {
			label = float64(models.OutcomeRejected)
			vec = weak
		}
		out = append(out, results.TrainingExample{
			Features:   vec,
			Label:      label,
			ObservedAt: observed.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func newTestTrainer(t *testing.T, examples ExampleSource, alerts Alerter) (*Trainer, sqlmock.Sqlmock, *ensemble.Store) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	snapshots := ensemble.NewStore()
	tr := New(testTrainingConfig(), examples, NewArtifactStore(&database.PostgresClient{DB: db}), snapshots, alerts, logger.NewNoOpLogger())
	tr.now = func() time.Time { return time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC) }
	return tr, mock, snapshots
}

func expectArtifactSave(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE model_artifacts SET is_current = FALSE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO model_artifacts`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestRunSkipsBelowMinSamples(t *testing.T) {
	tr, mock, snapshots := newTestTrainer(t, &stubExamples{examples: separableExamples(49)}, nil)

	require.NoError(t, tr.Run(context.Background()))

	// Nothing persisted, nothing published.
	require.NoError(t, mock.ExpectationsWereMet())
	model, degraded := snapshots.Current()
	assert.Nil(t, model)
	assert.False(t, degraded)
}

func TestRunPublishesLearnableModel(t *testing.T) {
	tr, mock, snapshots := newTestTrainer(t, &stubExamples{examples: separableExamples(200)}, nil)
	expectArtifactSave(mock)

	require.NoError(t, tr.Run(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())

	model, degraded := snapshots.Current()
	require.NotNil(t, model)
	assert.False(t, degraded)
	assert.Equal(t, "ensemble-20260301-030000", model.Version)
	assert.Equal(t, 200, model.SampleCount)

	// A clean split must be close to perfectly separable.
	assert.Greater(t, model.Metrics.Accuracy, 0.9)
	assert.Less(t, model.Metrics.BrierScore, 0.2)
}

func TestRunRejectsRegressionAndKeepsIncumbent(t *testing.T) {
	// Labels uncorrelated with features: the candidate cannot beat the
	// accuracy floor once the incumbent sets a high bar.
	noise := separableExamples(200)
	for i := range noise {
		if i%4 < 2 {
			noise[i].Label = float64(models.OutcomeRejected)
		} else {
			noise[i].Label = float64(models.OutcomeOffer)
		}
	}

	alerts := &captureAlerter{}
	tr, mock, snapshots := newTestTrainer(t, &stubExamples{examples: noise}, alerts)

	incumbent := &ensemble.Ensemble{
		Version: "ensemble-incumbent",
		Metrics: models.ModelMetrics{Accuracy: 0.95, CalibrationError: 0.02},
	}
	snapshots.Publish(incumbent)

	err := tr.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelRegression))

	// The incumbent stays active and operators hear about it.
	model, _ := snapshots.Current()
	require.NotNil(t, model)
	assert.Equal(t, "ensemble-incumbent", model.Version)
	assert.Contains(t, alerts.subjects, "candidate model rejected")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunAlertsWhenExampleLoadFails(t *testing.T) {
	alerts := &captureAlerter{}
	tr, _, _ := newTestTrainer(t, &stubExamples{err: fmt.Errorf("connection refused")}, alerts)

	err := tr.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, alerts.subjects, "training cycle failed")
}

func TestRunDropsMalformedVectors(t *testing.T) {
	examples := separableExamples(60)
	// Truncate some vectors to an older layout; they must not count
	// toward the sample minimum.
	for i := 0; i < 20; i++ {
		examples[i].Features = examples[i].Features[:7]
	}

	tr, mock, snapshots := newTestTrainer(t, &stubExamples{examples: examples}, nil)

	require.NoError(t, tr.Run(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
	model, _ := snapshots.Current()
	assert.Nil(t, model, "40 well-formed examples are below the minimum")
}

func TestGateChecksCalibrationRise(t *testing.T) {
	tr, _, snapshots := newTestTrainer(t, &stubExamples{}, nil)
	snapshots.Publish(&ensemble.Ensemble{
		Version: "incumbent",
		Metrics: models.ModelMetrics{Accuracy: 0.80, CalibrationError: 0.05},
	})

	assert.Empty(t, tr.gate(models.ModelMetrics{Accuracy: 0.81, CalibrationError: 0.08}))
	assert.NotEmpty(t, tr.gate(models.ModelMetrics{Accuracy: 0.81, CalibrationError: 0.15}))
	assert.NotEmpty(t, tr.gate(models.ModelMetrics{Accuracy: 0.50, CalibrationError: 0.05}))
	assert.NotEmpty(t, tr.gate(models.ModelMetrics{Accuracy: 0.76, CalibrationError: 0.05}))
}
