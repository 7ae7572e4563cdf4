// internal/training/trainer/trainer.go

// Package trainer runs the scheduled retraining cycle: load the outcome
// log, fit the three sub-models, evaluate on held-out data, gate against
// the incumbent, and publish the new ensemble atomically.
package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"match-engine/internal/common/config"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/internal/results"
	"match-engine/internal/training/ensemble"
	"match-engine/internal/training/features"
)

// Training cycle results reported on metrics.
const (
	cyclePublished = "published"
	cycleSkipped   = "skipped"
	cycleRejected  = "rejected"
	cycleFailed    = "failed"
)

// ExampleSource supplies labelled training rows. Satisfied by
// *results.Store.
type ExampleSource interface {
	TrainingExamples(ctx context.Context) ([]results.TrainingExample, error)
}

// Alerter notifies operators about training problems. Nil-safe via
// Trainer; satisfied by *SNSAlerter.
type Alerter interface {
	Notify(ctx context.Context, subject, message string) error
}

// Trainer owns the retraining lifecycle. Scoring never waits on it: the
// only shared state is the snapshot store, swapped after a cycle fully
// succeeds.
type Trainer struct {
	cfg       config.TrainingConfig
	examples  ExampleSource
	artifacts *ArtifactStore
	snapshots *ensemble.Store
	alerts    Alerter
	log       logger.Logger
	now       func() time.Time
}

func New(cfg config.TrainingConfig, examples ExampleSource, artifacts *ArtifactStore, snapshots *ensemble.Store, alerts Alerter, log logger.Logger) *Trainer {
	return &Trainer{
		cfg:       cfg,
		examples:  examples,
		artifacts: artifacts,
		snapshots: snapshots,
		alerts:    alerts,
		log:       log.WithFields(map[string]interface{}{"component": "trainer"}),
		now:       time.Now,
	}
}

// Bootstrap loads the current published artifact into the snapshot store
// at startup. A missing artifact is a normal cold start; a present but
// unusable one marks the store degraded so scoring flags its fallback.
func (t *Trainer) Bootstrap(ctx context.Context) {
	artifact, err := t.artifacts.LoadCurrent(ctx)
	if err != nil {
		t.log.WithError(err).Error("failed to load published model, scoring falls back to heuristic", nil)
		t.snapshots.MarkDegraded()
		return
	}
	if artifact == nil {
		t.log.Info("no published model yet, scoring starts heuristic-only", nil)
		return
	}

	model, err := ensemble.Decode(artifact)
	if err != nil {
		t.log.WithError(err).Error("published model failed to decode, scoring falls back to heuristic", map[string]interface{}{
			"version": artifact.Version,
		})
		t.snapshots.MarkDegraded()
		return
	}

	t.snapshots.Publish(model)
	t.log.Info("published model loaded", map[string]interface{}{
		"version":     model.Version,
		"sampleCount": model.SampleCount,
	})
}

// Start schedules periodic retraining. The returned cron is already
// running; callers stop it on shutdown.
func (t *Trainer) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(t.cfg.Schedule, func() {
		if err := t.Run(ctx); err != nil {
			t.log.WithError(err).Error("training cycle failed", nil)
		}
	})
	if err != nil {
		return nil, errors.NewInvalidConfigurationError(fmt.Errorf("training schedule %q: %w", t.cfg.Schedule, err))
	}
	c.Start()
	t.log.Info("training schedule started", map[string]interface{}{
		"schedule": t.cfg.Schedule,
	})
	return c, nil
}

// Run executes one full training cycle.
func (t *Trainer) Run(ctx context.Context) error {
	start := t.now()

	examples, err := t.examples.TrainingExamples(ctx)
	if err != nil {
		metrics.TrainingCycles.WithLabelValues(cycleFailed).Inc()
		t.alert(ctx, "training cycle failed", err.Error())
		return err
	}
	examples = wellFormed(examples)

	if len(examples) < t.cfg.MinSamples {
		metrics.TrainingCycles.WithLabelValues(cycleSkipped).Inc()
		t.log.Info("not enough outcomes to train, keeping current model", map[string]interface{}{
			"have": len(examples),
			"need": t.cfg.MinSamples,
		})
		return nil
	}

	trainX, trainY, trainW, testX, testY := t.split(examples)

	seed := start.UnixNano()
	candidate := &ensemble.Ensemble{
		Version: fmt.Sprintf("ensemble-%s", start.UTC().Format("20060102-150405")),
		SubModels: []ensemble.Predictor{
			ensemble.FitGradientBoosting(trainX, trainY, trainW, seed),
			ensemble.FitRandomForest(trainX, trainY, trainW, seed+1),
			ensemble.FitLogistic(trainX, trainY, trainW),
		},
		SampleCount: len(examples),
	}
	candidate.Metrics = evaluate(candidate, testX, testY)

	if reason := t.gate(candidate.Metrics); reason != "" {
		metrics.TrainingCycles.WithLabelValues(cycleRejected).Inc()
		t.log.Error("candidate model rejected, keeping current model", map[string]interface{}{
			"version":  candidate.Version,
			"reason":   reason,
			"accuracy": candidate.Metrics.Accuracy,
		})
		t.alert(ctx, "candidate model rejected",
			fmt.Sprintf("version %s rejected: %s", candidate.Version, reason))
		return errors.NewModelRegressionError(reason)
	}

	artifact := &models.EnsembleArtifact{
		Version:           candidate.Version,
		TrainedAt:         start.UTC(),
		SampleCount:       candidate.SampleCount,
		Metrics:           candidate.Metrics,
		FeatureImportance: importance(candidate),
	}
	if artifact.SubModels, err = candidate.Encode(); err != nil {
		metrics.TrainingCycles.WithLabelValues(cycleFailed).Inc()
		t.alert(ctx, "training cycle failed", err.Error())
		return errors.NewTrainingFailedError(err)
	}
	if err := t.artifacts.Save(ctx, artifact); err != nil {
		metrics.TrainingCycles.WithLabelValues(cycleFailed).Inc()
		t.alert(ctx, "training cycle failed", err.Error())
		return err
	}

	t.snapshots.Publish(candidate)
	metrics.TrainingCycles.WithLabelValues(cyclePublished).Inc()
	t.log.Info("new model published", map[string]interface{}{
		"version":     candidate.Version,
		"sampleCount": candidate.SampleCount,
		"accuracy":    candidate.Metrics.Accuracy,
		"brier":       candidate.Metrics.BrierScore,
		"duration":    t.now().Sub(start).String(),
	})
	return nil
}

// split shuffles deterministically by example count and carves off the
// held-out fraction. Training rows get recency weights; held-out rows
// are evaluated unweighted.
func (t *Trainer) split(examples []results.TrainingExample) (trainX [][]float64, trainY, trainW []float64, testX [][]float64, testY []float64) {
	idx := make([]int, len(examples))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(int64(len(examples))))
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	holdout := int(float64(len(examples)) * t.cfg.HoldoutFraction)
	if holdout < 1 {
		holdout = 1
	}

	now := t.now()
	halfLife := time.Duration(t.cfg.RecencyHalfLife) * 24 * time.Hour

	for n, i := range idx {
		ex := examples[i]
		if n < holdout {
			testX = append(testX, ex.Features)
			testY = append(testY, ex.Label)
			continue
		}
		trainX = append(trainX, ex.Features)
		trainY = append(trainY, ex.Label)
		trainW = append(trainW, features.RecencyWeight(ex.ObservedAt, now, halfLife))
	}
	return trainX, trainY, trainW, testX, testY
}

// gate compares the candidate against the floor and the incumbent.
// Returns a rejection reason, or "" to publish.
func (t *Trainer) gate(m models.ModelMetrics) string {
	if m.Accuracy < t.cfg.MinAccuracy {
		return fmt.Sprintf("accuracy %.3f below floor %.3f", m.Accuracy, t.cfg.MinAccuracy)
	}

	incumbent, _ := t.snapshots.Current()
	if incumbent == nil {
		return ""
	}
	if m.Accuracy < incumbent.Metrics.Accuracy-t.cfg.MaxAccuracyDrop {
		return fmt.Sprintf("accuracy %.3f regressed more than %.3f from incumbent %.3f",
			m.Accuracy, t.cfg.MaxAccuracyDrop, incumbent.Metrics.Accuracy)
	}
	if m.CalibrationError > incumbent.Metrics.CalibrationError+t.cfg.MaxCalibrationRise {
		return fmt.Sprintf("calibration error %.3f rose more than %.3f over incumbent %.3f",
			m.CalibrationError, t.cfg.MaxCalibrationRise, incumbent.Metrics.CalibrationError)
	}
	return ""
}

func (t *Trainer) alert(ctx context.Context, subject, message string) {
	if t.alerts == nil {
		return
	}
	if err := t.alerts.Notify(ctx, subject, message); err != nil {
		t.log.WithError(err).Warn("failed to send operator alert", nil)
	}
}

// wellFormed drops rows whose stored vector does not match the current
// feature layout, e.g. results persisted before a layout change.
func wellFormed(examples []results.TrainingExample) []results.TrainingExample {
	out := examples[:0]
	for _, ex := range examples {
		if len(ex.Features) == ensemble.FeatureCount {
			out = append(out, ex)
		}
	}
	return out
}

// importance ranks features by the logistic sub-model's absolute
// weights, the only sub-model with directly interpretable coefficients.
func importance(e *ensemble.Ensemble) []models.FeatureImportance {
	var logistic *ensemble.Logistic
	for _, sub := range e.SubModels {
		if l, ok := sub.(*ensemble.Logistic); ok {
			logistic = l
		}
	}
	if logistic == nil {
		return nil
	}

	var total float64
	for _, w := range logistic.Weights {
		total += abs(w)
	}
	if total == 0 {
		return nil
	}

	out := make([]models.FeatureImportance, 0, len(logistic.Weights))
	for i, w := range logistic.Weights {
		name := fmt.Sprintf("f%d", i)
		if i < len(features.Names) {
			name = features.Names[i]
		}
		out = append(out, models.FeatureImportance{Feature: name, Importance: abs(w) / total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
